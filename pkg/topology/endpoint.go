package topology

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// EndpointKind tells how a link endpoint id is to be resolved
type EndpointKind uint8

const (
	// EndpointAuto ids are resolved against ports first, then devices
	EndpointAuto EndpointKind = iota
	// EndpointPort ids name a port
	EndpointPort
	// EndpointDevice ids name a device directly (legacy documents)
	EndpointDevice
)

func (k EndpointKind) String() string {
	switch k {
	case EndpointPort:
		return "port"
	case EndpointDevice:
		return "device"
	default:
		return "auto"
	}
}

// Endpoint is one end of a link: a port reference or a device reference.
//
// In documents an endpoint is either a bare id string or an object carrying an
// "id" key (the shape graph-drawing libraries leave behind after binding a link
// to its node object). Object endpoints always reference devices.
type Endpoint struct {
	Kind EndpointKind
	ID   string
}

// PortRef returns an endpoint referencing a port
func PortRef(id string) Endpoint { return Endpoint{Kind: EndpointPort, ID: id} }

// DeviceRef returns an endpoint referencing a device
func DeviceRef(id string) Endpoint { return Endpoint{Kind: EndpointDevice, ID: id} }

// Ref returns an endpoint whose kind is decided when the index is built
func Ref(id string) Endpoint { return Endpoint{ID: id} }

func (e Endpoint) String() string { return e.ID }

// deviceObject is the document shape of a device reference
type deviceObject struct {
	ID string `json:"id" yaml:"id"`
}

// MarshalJSON writes device references as {"id": "..."} and anything else as
// its bare id
func (e Endpoint) MarshalJSON() ([]byte, error) {
	if e.Kind == EndpointDevice {
		return json.Marshal(deviceObject{ID: e.ID})
	}
	return json.Marshal(e.ID)
}

// UnmarshalJSON accepts "id" or {"id": "..."}
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj deviceObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("link endpoint: %w", err)
		}
		*e = DeviceRef(obj.ID)
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("link endpoint must be an id or an object with an id: %w", err)
	}
	*e = Ref(id)
	return nil
}

// MarshalYAML writes device references as a mapping with an id key and
// anything else as its bare id
func (e Endpoint) MarshalYAML() (any, error) {
	if e.Kind == EndpointDevice {
		return deviceObject{ID: e.ID}, nil
	}
	return e.ID, nil
}

// UnmarshalYAML accepts a scalar id or a mapping with an id key
func (e *Endpoint) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*e = Ref(value.Value)
		return nil
	case yaml.MappingNode:
		var obj deviceObject
		if err := value.Decode(&obj); err != nil {
			return fmt.Errorf("link endpoint: %w", err)
		}
		*e = DeviceRef(obj.ID)
		return nil
	}
	return fmt.Errorf("link endpoint at line %d must be an id or a mapping", value.Line)
}
