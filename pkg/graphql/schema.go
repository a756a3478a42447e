// Package graphql exposes the topology analyses as a GraphQL schema.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
)

var deviceUsageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DeviceUsage",
	Fields: graphql.Fields{
		"deviceId": &graphql.Field{Type: graphql.ID},
		"inbound":  &graphql.Field{Type: graphql.Float},
		"outbound": &graphql.Field{Type: graphql.Float},
		"total":    &graphql.Field{Type: graphql.Float},
	},
})

var bandwidthInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BandwidthInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"linkId":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"currentBandwidth": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var bandwidthResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BandwidthResult",
	Fields: graphql.Fields{
		"topologyId": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(analysis.BandwidthOutcome).TopologyID, nil
			},
		},
		"totalLinks": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(analysis.BandwidthOutcome).TotalLinks, nil
			},
		},
		"updatedLinks": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(analysis.BandwidthOutcome).UpdatedLinks, nil
			},
		},
		"errors": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(analysis.BandwidthOutcome).Errors, nil
			},
		},
		"errorDetails": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(analysis.BandwidthOutcome).ErrorDetails, nil
			},
		},
		"persisted": &graphql.Field{Type: graphql.Boolean},
		"version": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return int(p.Source.(analysis.BandwidthOutcome).Version), nil
			},
		},
	},
})

// NewSchema builds the analysis schema over svc
func NewSchema(svc *analysis.Service) (graphql.Schema, error) {
	if svc == nil {
		return graphql.Schema{}, fmt.Errorf("analysis service is required")
	}
	r := &resolver{svc: svc}

	link := linkType(svc.Model())
	active := activeTopologyType(link)
	pathArgs := graphql.FieldConfigArgument{
		"from": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		"to":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"topologies": &graphql.Field{
				Type:    graphql.NewList(summaryType),
				Resolve: r.topologies,
			},
			"activeTopology": &graphql.Field{
				Type:    active,
				Resolve: r.activeTopology,
			},
			"path": &graphql.Field{
				Type:        pathType,
				Description: "Fewest-hop path between two devices",
				Args:        pathArgs,
				Resolve:     r.path(analysis.AlgorithmBFS),
			},
			"shortestPath": &graphql.Field{
				Type:        pathType,
				Description: "Cheapest path between two devices by search weight",
				Args:        pathArgs,
				Resolve:     r.path(analysis.AlgorithmDijkstra),
			},
			"routes": &graphql.Field{
				Type: graphql.NewList(routeType),
				Args: graphql.FieldConfigArgument{
					"deviceId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.routes,
			},
			"routingTables": &graphql.Field{
				Type:    graphql.NewList(routingTableType),
				Resolve: r.routingTables,
			},
			"capacityPlan": &graphql.Field{
				Type: planType,
				Args: graphql.FieldConfigArgument{
					"deviceId":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"requiredMbps": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"mode":         &graphql.ArgumentConfig{Type: planModeEnum},
				},
				Resolve: r.capacityPlan,
			},
			"congestedLinks": &graphql.Field{
				Type: graphql.NewList(linkUsageType(link)),
				Args: graphql.FieldConfigArgument{
					"threshold": &graphql.ArgumentConfig{
						Type:         graphql.Float,
						DefaultValue: planning.BottleneckPercent,
					},
				},
				Resolve: r.congestedLinks,
			},
			"deviceUsage": &graphql.Field{
				Type: deviceUsageType,
				Args: graphql.FieldConfigArgument{
					"deviceId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.deviceUsage,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"activateTopology": &graphql.Field{
				Type: active,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.activateTopology,
			},
			"updateBandwidth": &graphql.Field{
				Type: bandwidthResultType,
				Args: graphql.FieldConfigArgument{
					"topologyId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"updates": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bandwidthInputType))),
					},
				},
				Resolve: r.updateBandwidth,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}
