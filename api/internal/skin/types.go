package skin

// SkinType is the closed label set returned to callers.
type SkinType string

const (
	Oily      SkinType = "Oily"
	Dry       SkinType = "Dry"
	Normal    SkinType = "Normal"
	Uncertain SkinType = "Uncertain"
)

// Valid reports whether t is one of the four labels.
func (t SkinType) Valid() bool {
	switch t {
	case Oily, Dry, Normal, Uncertain:
		return true
	}
	return false
}

// Request is the inbound analysis body.
type Request struct {
	Image string `json:"image"` // data:<mime>;base64,<payload>
}

// Result is the outbound analysis body.
type Result struct {
	SkinType SkinType `json:"skinType"`
}

// ErrorResponse is the JSON envelope used for every failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
