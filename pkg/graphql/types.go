package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// amountScalar carries costs and metrics. Unbounded values serialize as the
// string "Infinity" through cost.Amount's JSON encoding.
var amountScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Amount",
	Description: `A cost or metric. Unreachable routes report "Infinity".`,
	Serialize: func(value any) any {
		switch v := value.(type) {
		case cost.Amount:
			return v
		case *cost.Amount:
			if v == nil {
				return nil
			}
			return *v
		case float64:
			return cost.Amount(v)
		case int:
			return cost.Amount(v)
		}
		return nil
	},
})

var summaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TopologySummary",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"active":      &graphql.Field{Type: graphql.Boolean},
	},
})

var portType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Port",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name": &graphql.Field{Type: graphql.String},
		"status": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if port, ok := p.Source.(topology.Port); ok {
					return string(port.Status), nil
				}
				return nil, nil
			},
		},
	},
})

var deviceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Device",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name": &graphql.Field{Type: graphql.String},
		"type": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if d, ok := p.Source.(*topology.Device); ok {
					return string(d.Type), nil
				}
				return nil, nil
			},
		},
		"ports": &graphql.Field{Type: graphql.NewList(portType)},
	},
})

// linkType exposes the stored bandwidth figures together with the weights the
// cost model derives from them
func linkType(model *cost.Model) *graphql.Object {
	link := func(p graphql.ResolveParams) *topology.Link {
		l, _ := p.Source.(*topology.Link)
		return l
	}
	derived := func(fn func(*topology.Link) float64) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (any, error) {
			if l := link(p); l != nil {
				return fn(l), nil
			}
			return nil, nil
		}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Link",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if l := link(p); l != nil {
						return l.ID, nil
					}
					return nil, nil
				},
			},
			"source": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if l := link(p); l != nil {
						return l.Source.ID, nil
					}
					return nil, nil
				},
			},
			"target": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if l := link(p); l != nil {
						return l.Target.ID, nil
					}
					return nil, nil
				},
			},
			"type": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if l := link(p); l != nil {
						return l.Type, nil
					}
					return nil, nil
				},
			},
			"maxBandwidth":     &graphql.Field{Type: graphql.Float, Resolve: derived(func(l *topology.Link) float64 { return l.MaxBandwidth })},
			"currentBandwidth": &graphql.Field{Type: graphql.Float, Resolve: derived(func(l *topology.Link) float64 { return l.CurrentBandwidth })},
			"available":        &graphql.Field{Type: graphql.Float, Resolve: derived(cost.Available)},
			"usagePercent":     &graphql.Field{Type: graphql.Float, Resolve: derived(cost.UsagePercent)},
			"searchWeight":     &graphql.Field{Type: graphql.Float, Resolve: derived(model.SearchWeight)},
			"qualityCost":      &graphql.Field{Type: graphql.Float, Resolve: derived(model.DisplayCost)},
		},
	})
}

func activeTopologyType(link *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "ActiveTopology",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*topology.View).Topology.ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*topology.View).Topology.Name, nil
				},
			},
			"version": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return int(p.Source.(*topology.View).Version), nil
				},
			},
			"devices": &graphql.Field{
				Type: graphql.NewList(deviceType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*topology.View).Index.Devices(), nil
				},
			},
			"links": &graphql.Field{
				Type: graphql.NewList(link),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*topology.View).Index.Links(), nil
				},
			},
			"issues": &graphql.Field{
				Type: graphql.NewList(issueType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*topology.View).Index.Issues(), nil
				},
			},
		},
	})
}

var issueType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TopologyIssue",
	Fields: graphql.Fields{
		"kind": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return string(p.Source.(topology.Issue).Kind), nil
			},
		},
		"id":      &graphql.Field{Type: graphql.String},
		"message": &graphql.Field{Type: graphql.String},
	},
})

var pathType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PathResult",
	Fields: graphql.Fields{
		"algorithm": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return string(p.Source.(analysis.PathResult).Algorithm), nil
			},
		},
		"from":   &graphql.Field{Type: graphql.String},
		"to":     &graphql.Field{Type: graphql.String},
		"found":  &graphql.Field{Type: graphql.Boolean},
		"path":   &graphql.Field{Type: graphql.NewList(graphql.String)},
		"names":  &graphql.Field{Type: graphql.NewList(graphql.String)},
		"links":  &graphql.Field{Type: graphql.NewList(graphql.String)},
		"hops":   &graphql.Field{Type: graphql.Int},
		"weight": &graphql.Field{Type: amountScalar},
	},
})

var routeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Route",
	Fields: graphql.Fields{
		"destination": &graphql.Field{Type: graphql.String},
		"nextHop":     &graphql.Field{Type: graphql.String},
		"interface":   &graphql.Field{Type: graphql.String},
		"metric":      &graphql.Field{Type: amountScalar},
		"path":        &graphql.Field{Type: graphql.String},
	},
})

var routingTableType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RoutingTable",
	Fields: graphql.Fields{
		"deviceId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"device":   &graphql.Field{Type: graphql.String},
		"routes":   &graphql.Field{Type: graphql.NewList(routeType)},
	},
})

var bottleneckType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Bottleneck",
	Fields: graphql.Fields{
		"linkId":            &graphql.Field{Type: graphql.String},
		"description":       &graphql.Field{Type: graphql.String},
		"currentUsage":      &graphql.Field{Type: graphql.Float},
		"availableCapacity": &graphql.Field{Type: graphql.Float},
	},
})

var upgradeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Upgrade",
	Fields: graphql.Fields{
		"linkId":      &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"currentCapacity": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(planning.Upgrade).CurrentCapacity, nil
			},
		},
		"newCapacity": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(planning.Upgrade).SuggestedCapacity, nil
			},
		},
		"cost": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(planning.Upgrade).Cost, nil
			},
		},
	},
})

var analysisType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RouteAnalysis",
	Fields: graphql.Fields{
		"routeName":       &graphql.Field{Type: graphql.String},
		"connectionPoint": &graphql.Field{Type: graphql.String},
		"isp":             &graphql.Field{Type: graphql.String},
		"path":            &graphql.Field{Type: graphql.String},
		"devices":         &graphql.Field{Type: graphql.NewList(graphql.String)},
		"feasible":        &graphql.Field{Type: graphql.Boolean},
		"needsUpgrade":    &graphql.Field{Type: graphql.Boolean},
		"totalCost":       &graphql.Field{Type: amountScalar},
		"bottlenecks":     &graphql.Field{Type: graphql.NewList(bottleneckType)},
		"upgrades":        &graphql.Field{Type: graphql.NewList(upgradeType)},
		"status": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return string(p.Source.(planning.Analysis).Status), nil
			},
		},
	},
})

var planType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CapacityPlan",
	Fields: graphql.Fields{
		"runId":      &graphql.Field{Type: graphql.ID},
		"topologyId": &graphql.Field{Type: graphql.String},
		"analyses":   &graphql.Field{Type: graphql.NewList(analysisType)},
	},
})

func linkUsageType(link *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "LinkUsage",
		Fields: graphql.Fields{
			"link":    &graphql.Field{Type: link},
			"percent": &graphql.Field{Type: graphql.Float},
		},
	})
}

var planModeEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "PlanMode",
	Values: graphql.EnumValueConfigMap{
		"VIA_CONNECTION_POINTS": &graphql.EnumValueConfig{Value: string(planning.ModeViaConnectionPoint)},
		"DIRECT":                &graphql.EnumValueConfig{Value: string(planning.ModeDirect)},
	},
})
