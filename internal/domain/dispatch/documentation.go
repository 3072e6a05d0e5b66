package dispatch

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/catalogd/internal/shared/pathtemplate"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

const documentationMessage = "No API credentials configured. Set API_URL and API_TOKEN to execute; " +
	"this is the request that would be sent."

// Document renders the call req would make without contacting the network.
// Unfilled placeholders stay in the path and are listed.
func Document(entry types.Entry, req types.ExecuteRequest) *types.DocumentationResponse {
	expanded, missing := pathtemplate.Expand(entry.Path, req.PathParams)
	path := pathtemplate.Join(expanded, pathtemplate.Query(req.QueryParams))
	method := entry.UpperMethod()

	msg := documentationMessage
	if len(missing) > 0 {
		msg += " Missing path parameters: " + strings.Join(missing, ", ") + "."
	}

	return &types.DocumentationResponse{
		ToolInfo:          entry.Info(),
		Method:            method,
		Path:              path,
		ExampleCommand:    CurlCommand(method, path, req.Body),
		Message:           msg,
		MissingPathParams: missing,
		Body:              req.Body,
	}
}

// CurlCommand renders a shell command for the call. The tenant URL and
// token are left as environment references.
func CurlCommand(method, path string, body interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, `curl -X %s "${API_URL}%s"`, method, path)
	b.WriteString(` -H "Authorization: APIToken ${API_TOKEN}"`)
	if body == nil {
		return b.String()
	}

	payload, err := sonic.MarshalString(body)
	if err != nil {
		return b.String()
	}
	b.WriteString(` -H "Content-Type: application/json"`)
	fmt.Fprintf(&b, " -d '%s'", strings.ReplaceAll(payload, "'", `'\''`))
	return b.String()
}
