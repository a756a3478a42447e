package graphql

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
	"github.com/dd0wney/cluso-netplan/pkg/validation"
)

type resolver struct {
	svc *analysis.Service
}

func contextOf(p graphql.ResolveParams) context.Context {
	if p.Context != nil {
		return p.Context
	}
	return context.Background()
}

func (r *resolver) topologies(p graphql.ResolveParams) (any, error) {
	return r.svc.Topologies(contextOf(p))
}

// activeTopology resolves to null while nothing is active
func (r *resolver) activeTopology(p graphql.ResolveParams) (any, error) {
	v, err := r.svc.View()
	if errors.Is(err, topology.ErrNoActiveTopology) {
		return nil, nil
	}
	return v, err
}

func (r *resolver) path(algo analysis.Algorithm) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		req := validation.PathRequest{}
		req.From, _ = p.Args["from"].(string)
		req.To, _ = p.Args["to"].(string)
		if err := validation.ValidatePathRequest(&req); err != nil {
			return nil, err
		}
		return r.svc.Path(req.From, req.To, algo)
	}
}

func (r *resolver) routes(p graphql.ResolveParams) (any, error) {
	req := validation.RoutesRequest{}
	req.DeviceID, _ = p.Args["deviceId"].(string)
	if err := validation.ValidateRoutesRequest(&req); err != nil {
		return nil, err
	}
	return r.svc.Routes(req.DeviceID)
}

func (r *resolver) routingTables(p graphql.ResolveParams) (any, error) {
	return r.svc.RoutingTables(contextOf(p))
}

func (r *resolver) capacityPlan(p graphql.ResolveParams) (any, error) {
	req := planning.Request{}
	req.DeviceID, _ = p.Args["deviceId"].(string)
	req.RequiredMbps, _ = p.Args["requiredMbps"].(float64)
	if mode, ok := p.Args["mode"].(string); ok {
		req.Mode = planning.Mode(mode)
	}
	if err := validation.ValidatePlanRequest(&req); err != nil {
		return nil, err
	}
	return r.svc.Plan(req)
}

func (r *resolver) congestedLinks(p graphql.ResolveParams) (any, error) {
	threshold, ok := p.Args["threshold"].(float64)
	if !ok {
		threshold = planning.BottleneckPercent
	}
	if err := validation.ValidateUsageThreshold(threshold); err != nil {
		return nil, err
	}
	return r.svc.CongestedLinks(threshold)
}

func (r *resolver) deviceUsage(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["deviceId"].(string)
	if err := validation.ValidateID("device", id); err != nil {
		return nil, err
	}
	return r.svc.DeviceUsage(id)
}

func (r *resolver) activateTopology(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	if err := validation.ValidateID("topology", id); err != nil {
		return nil, err
	}
	return r.svc.Activate(contextOf(p), id)
}

func (r *resolver) updateBandwidth(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["topologyId"].(string)
	if err := validation.ValidateID("topology", id); err != nil {
		return nil, err
	}

	raw, _ := p.Args["updates"].([]any)
	req := validation.BandwidthRequest{Updates: make([]validation.BandwidthSample, 0, len(raw))}
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		s := validation.BandwidthSample{}
		s.LinkID, _ = m["linkId"].(string)
		s.CurrentBandwidth, _ = m["currentBandwidth"].(float64)
		req.Updates = append(req.Updates, s)
	}
	if err := validation.ValidateBandwidthRequest(&req); err != nil {
		return nil, err
	}
	return r.svc.ApplyBandwidth(contextOf(p), id, req.ToUpdates())
}
