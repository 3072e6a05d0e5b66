// Package testutil provides fixtures and mocks shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/catalogd/internal/domain/catalogue"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

const nsPath = "/api/config/namespaces/{namespace}/"

func crud(domain, resource, collection string, ops ...types.Operation) []types.Entry {
	nsParam := types.Parameter{Name: "namespace", Type: "string", Required: true, Description: "Namespace"}
	nameParam := types.Parameter{Name: "name", Type: "string", Required: true, Description: "Object name"}

	out := make([]types.Entry, 0, len(ops))
	for _, op := range ops {
		e := types.Entry{
			Name:           resource + "-" + string(op),
			Domain:         domain,
			Resource:       resource,
			Operation:      op,
			Path:           nsPath + collection,
			PathParameters: []types.Parameter{nsParam},
			DangerLevel:    types.DangerLow,
		}
		switch op {
		case types.OperationCreate:
			e.Method = "POST"
			e.Summary = "Create " + resource
			e.RequestBodyRef = resource
			e.RequiredFields = []string{"metadata.name", "metadata.namespace"}
			e.DangerLevel = types.DangerMedium
		case types.OperationGet:
			e.Method = "GET"
			e.Summary = "Get " + resource
			e.Path += "/{name}"
			e.PathParameters = append(e.PathParameters, nameParam)
		case types.OperationList:
			e.Method = "GET"
			e.Summary = "List " + resource + " objects"
			e.QueryParameters = []types.Parameter{
				{Name: "label_filter", Type: "string", Description: "Label selector"},
				{Name: "report_fields", Type: "array", Description: "Fields to include"},
			}
		case types.OperationUpdate:
			e.Method = "PUT"
			e.Summary = "Replace " + resource
			e.Path += "/{name}"
			e.PathParameters = append(e.PathParameters, nameParam)
			e.RequestBodyRef = resource
		case types.OperationDelete:
			e.Method = "DELETE"
			e.Summary = "Delete " + resource
			e.Path += "/{name}"
			e.PathParameters = append(e.PathParameters, nameParam)
			e.DangerLevel = types.DangerHigh
		}
		out = append(out, e)
	}
	return out
}

// Entries returns a small load-balancing catalogue
func Entries() []types.Entry {
	all := []types.Operation{
		types.OperationCreate, types.OperationGet, types.OperationList,
		types.OperationUpdate, types.OperationDelete,
	}

	var entries []types.Entry
	entries = append(entries, crud("virtual", "http-loadbalancer", "http_loadbalancers", all...)...)
	entries = append(entries, crud("virtual", "origin-pool", "origin_pools", all...)...)
	entries = append(entries, crud("virtual", "healthcheck", "healthchecks",
		types.OperationCreate, types.OperationList, types.OperationDelete)...)
	entries = append(entries, crud("waf", "app-firewall", "app_firewalls",
		types.OperationCreate, types.OperationList)...)
	entries = append(entries, crud("certificates", "certificate", "certificates",
		types.OperationCreate, types.OperationList)...)

	lbGroups := []types.OneOfGroup{{
		ChoiceField:       "loadbalancer_type",
		Options:           []string{"spec.http", "spec.https", "spec.https_auto_cert"},
		RecommendedOption: "spec.https_auto_cert",
		Description:       "Listener protocol",
	}}
	for i := range entries {
		if entries[i].Name == "http-loadbalancer-create" {
			entries[i].OneOfGroups = lbGroups
			entries[i].Summary = "Create HTTP load balancer"
		}
	}
	return entries
}

// Dependencies returns the dependency records matching Entries
func Dependencies() []types.DependencyRecord {
	return []types.DependencyRecord{
		{
			Domain:   "virtual",
			Resource: "http-loadbalancer",
			Requires: []types.ResourceRef{
				{Domain: "virtual", ResourceType: "origin-pool", Required: true},
				{Domain: "waf", ResourceType: "app-firewall", Required: false},
				{Domain: "certificates", ResourceType: "certificate", Required: false},
			},
			OneOfGroups: []types.OneOfGroup{{
				ChoiceField:       "loadbalancer_type",
				Options:           []string{"spec.http", "spec.https", "spec.https_auto_cert"},
				RecommendedOption: "spec.https_auto_cert",
			}},
			Tier: "Standard",
		},
		{
			Domain:   "virtual",
			Resource: "origin-pool",
			Requires: []types.ResourceRef{
				{Domain: "virtual", ResourceType: "healthcheck", Required: true},
			},
		},
		{Domain: "virtual", Resource: "healthcheck"},
		{Domain: "waf", Resource: "app-firewall", Tier: "Advanced", Category: "Security"},
		{Domain: "certificates", Resource: "certificate"},
	}
}

// Schemas returns request-body schemas keyed by resource
func Schemas() map[string]interface{} {
	return map[string]interface{}{
		"http-loadbalancer": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"metadata", "spec"},
			"properties": map[string]interface{}{
				"metadata": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"name"},
					"properties": map[string]interface{}{
						"name":      map[string]interface{}{"type": "string", "minLength": 1},
						"namespace": map[string]interface{}{"type": "string"},
					},
				},
				"spec": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"domains": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
					},
				},
			},
		},
	}
}

// Catalogue builds the fixture catalogue
func Catalogue(t testing.TB) *catalogue.Catalogue {
	t.Helper()
	c, err := catalogue.New(Entries(), Dependencies(), Schemas())
	require.NoError(t, err)
	return c
}
