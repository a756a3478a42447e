package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Problem is one defect found in a topology document
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TopologyError lists every problem of a topology document
type TopologyError struct {
	TopologyID string    `json:"topologyId"`
	Problems   []Problem `json:"problems"`
}

func (e *TopologyError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("topology %q is invalid", e.TopologyID)
	}
	return fmt.Sprintf("topology %q has %d problem(s), first: %s: %s",
		e.TopologyID, len(e.Problems), e.Problems[0].Field, e.Problems[0].Message)
}

// Unwrap makes errors.Is(err, topology.ErrInvalidTopology) hold
func (e *TopologyError) Unwrap() error {
	return topology.ErrInvalidTopology
}

// ValidateTopology checks a topology document field by field and then for the
// structural defects the index would skip: duplicate ids, orphan ports,
// dangling links and self-loops. All problems are collected.
func ValidateTopology(t *topology.Topology) error {
	if t == nil {
		return errors.New("topology cannot be nil")
	}

	var problems []Problem
	if err := validate.Struct(t); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			msg := describe(fe)
			field := fieldPath(fe)
			problems = append(problems, Problem{
				Field:   field,
				Message: strings.TrimPrefix(msg, field+": "),
			})
		}
	}

	if len(t.Devices) == 0 {
		problems = append(problems, Problem{Field: "devices", Message: "at least one device is required"})
	}

	for i, l := range t.Links {
		if math.IsNaN(l.MaxBandwidth) || math.IsInf(l.MaxBandwidth, 0) ||
			math.IsNaN(l.CurrentBandwidth) || math.IsInf(l.CurrentBandwidth, 0) {
			problems = append(problems, Problem{
				Field:   fmt.Sprintf("links[%d]", i),
				Message: "bandwidth must be a finite number",
			})
		}
		if l.Source.ID == "" || l.Target.ID == "" {
			problems = append(problems, Problem{
				Field:   fmt.Sprintf("links[%d]", i),
				Message: "source and target are required",
			})
		}
	}

	for _, issue := range topology.BuildIndex(t, nil).Issues() {
		problems = append(problems, Problem{
			Field:   string(issue.Kind),
			Message: fmt.Sprintf("%s: %s", issue.ID, issue.Message),
		})
	}

	if len(problems) == 0 {
		return nil
	}
	return &TopologyError{TopologyID: t.ID, Problems: problems}
}
