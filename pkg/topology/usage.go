package topology

// LinkUsage pairs a link with its utilisation
type LinkUsage struct {
	Link    *Link   `json:"link"`
	Percent float64 `json:"percent"`
}

// DeviceUsage sums the utilised bandwidth on the links touching a device.
// Inbound counts links whose target is on the device, outbound those whose
// source is.
type DeviceUsage struct {
	DeviceID string  `json:"deviceId"`
	Inbound  float64 `json:"inbound"`
	Outbound float64 `json:"outbound"`
	Total    float64 `json:"total"`
}

// LinksByUsage returns the links whose utilisation exceeds thresholdPercent,
// in link order. Links with dangling endpoints are included; utilisation is a
// property of the link alone.
func LinksByUsage(idx *Index, thresholdPercent float64) []LinkUsage {
	out := make([]LinkUsage, 0)
	for _, l := range idx.Links() {
		if p := l.UsagePercent(); p > thresholdPercent {
			out = append(out, LinkUsage{Link: l, Percent: p})
		}
	}
	return out
}

// UsageOf returns the bandwidth usage of a device
func UsageOf(idx *Index, deviceID string) (DeviceUsage, error) {
	if !idx.HasDevice(deviceID) {
		return DeviceUsage{}, newError("Usage", "device", deviceID, ErrDeviceNotFound)
	}

	u := DeviceUsage{DeviceID: deviceID}
	for _, l := range idx.Links() {
		from, okFrom := idx.Resolve(l.Source)
		to, okTo := idx.Resolve(l.Target)
		if okTo && to == deviceID {
			u.Inbound += l.CurrentBandwidth
		}
		if okFrom && from == deviceID {
			u.Outbound += l.CurrentBandwidth
		}
	}
	u.Total = u.Inbound + u.Outbound
	return u, nil
}
