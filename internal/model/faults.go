package model

// Fault describes one entry of the label set.
type Fault struct {
	Index       int    `json:"index"`
	Code        string `json:"code"`
	Class       string `json:"class"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var faults = [FeatureCount]Fault{
	{
		Code: "NF",
		Name: "Normal Operation",
		Description: "Bus voltages, currents and frequency are within their normal operating band; " +
			"no disturbance is present.",
	},
	{
		Code: "LL",
		Name: "Load-Loss (Load Shedding or Load Disconnection)",
		Description: "A section of the power system suddenly loses demand. Generators keep producing " +
			"the same power, so voltage and frequency rise on nearby buses.",
	},
	{
		Code: "GO",
		Name: "Generator Outage",
		Description: "One or more generating units go offline. Supply falls while demand stays the " +
			"same, so voltage and frequency drop around the affected area.",
	},
	{
		Code: "GG",
		Name: "Generator Ground",
		Description: "A live component inside a generator contacts the grounded frame. Produces " +
			"abnormal current flows and phase angle distortion.",
	},
}

// Faults returns the fault catalogue in classifier output order.
func Faults() []Fault {
	out := make([]Fault, len(faults))
	for i, f := range faults {
		f.Index = i
		f.Class = classes[i]
		out[i] = f
	}
	return out
}
