package dto

// Envelope is the uniform response wrapper for every endpoint. Degraded is
// set when a result was produced under storage or scorer unavailability so
// callers can tell real results from fallbacks.
type Envelope struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Degraded bool        `json:"degraded,omitempty"`
}

func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func OKDegraded(data interface{}) Envelope {
	return Envelope{Success: true, Data: data, Degraded: true}
}

func Fail(message string) Envelope {
	return Envelope{Success: false, Error: message}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
