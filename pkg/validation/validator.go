package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation limits
	MaxBandwidthUpdates = 10000
	MaxIDLength         = 255
)

func init() {
	validate = validator.New()

	// report json names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
}

// PathRequest asks for a path between two devices
type PathRequest struct {
	From string `json:"from" validate:"required,max=255"`
	To   string `json:"to" validate:"required,max=255"`
}

// RoutesRequest asks for the routing table of a device
type RoutesRequest struct {
	DeviceID string `json:"deviceId" validate:"required,max=255"`
}

// BandwidthSample is one telemetry reading in a bandwidth refresh
type BandwidthSample struct {
	LinkID           string  `json:"linkId" validate:"required,max=255"`
	CurrentBandwidth float64 `json:"currentBandwidth" validate:"finite,gte=0"`
}

// BandwidthRequest carries a batch of telemetry readings
type BandwidthRequest struct {
	Updates []BandwidthSample `json:"updates" validate:"required,min=1,max=10000,dive"`
}

// ToUpdates converts the request into store updates
func (r *BandwidthRequest) ToUpdates() []topology.BandwidthUpdate {
	out := make([]topology.BandwidthUpdate, len(r.Updates))
	for i, s := range r.Updates {
		out[i] = topology.BandwidthUpdate{LinkID: s.LinkID, CurrentBandwidth: s.CurrentBandwidth}
	}
	return out
}

// ValidatePathRequest validates a path request
func ValidatePathRequest(req *PathRequest) error {
	if req == nil {
		return errors.New("path request cannot be nil")
	}
	return formatValidationError(validate.Struct(req))
}

// ValidateRoutesRequest validates a routing table request
func ValidateRoutesRequest(req *RoutesRequest) error {
	if req == nil {
		return errors.New("routes request cannot be nil")
	}
	return formatValidationError(validate.Struct(req))
}

// ValidatePlanRequest validates a capacity plan request. Whether the device
// exists is checked by the planner against the active topology.
func ValidatePlanRequest(req *planning.Request) error {
	if req == nil {
		return errors.New("capacity plan request cannot be nil")
	}
	if math.IsNaN(req.RequiredMbps) || math.IsInf(req.RequiredMbps, 0) {
		return errors.New("requiredMbps: must be a finite number")
	}
	return formatValidationError(validate.Struct(req))
}

// ValidateBandwidthRequest validates a bandwidth refresh
func ValidateBandwidthRequest(req *BandwidthRequest) error {
	if req == nil {
		return errors.New("bandwidth request cannot be nil")
	}
	if len(req.Updates) > MaxBandwidthUpdates {
		return fmt.Errorf("updates: maximum %d updates allowed, got %d", MaxBandwidthUpdates, len(req.Updates))
	}
	return formatValidationError(validate.Struct(req))
}

// ValidateUsageThreshold validates a utilisation threshold in percent
func ValidateUsageThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1000 {
		return fmt.Errorf("threshold: must be between 0 and 1000 percent, got %v", threshold)
	}
	return nil
}

// ValidateID validates a topology, device or link id taken from a URL
func ValidateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s id cannot be empty", kind)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%s id exceeds maximum length of %d characters", kind, MaxIDLength)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		return errors.New(describe(e))
	}

	return err
}

// describe renders one field error
func describe(e validator.FieldError) string {
	field := fieldPath(e)
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: field is required", field)
	case "min":
		return fmt.Sprintf("%s: must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s: must not exceed %s", field, param)
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, param)
	case "finite":
		return fmt.Sprintf("%s: must be a finite number", field)
	default:
		return fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
	}
}

// fieldPath drops the root struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}
