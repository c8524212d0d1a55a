package recognition

import "fmt"

// Status is the outcome of one recognition attempt.
type Status int

// The zero Status is Unsuccessful, so an unset Result never reports success.
const (
	// Unsuccessful means the frame was processed but no acceptable region
	// was found. This is the normal result for an empty scene.
	Unsuccessful Status = iota

	// Successful means at least one region passed the criteria.
	Successful

	// InternalError means no frame could be obtained.
	InternalError
)

var statusNames = map[Status]string{
	Successful:    "RECOGNITION_SUCCESSFUL",
	Unsuccessful:  "RECOGNITION_UNSUCCESSFUL",
	InternalError: "RECOGNITION_INTERNAL_ERROR",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
