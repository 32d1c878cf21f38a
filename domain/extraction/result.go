package extraction

// Status classifies the outcome of one region in a batch.
type Status int

const (
	StatusOK Status = iota
	StatusEmptyRegion
	StatusRecognitionError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmptyRegion:
		return "empty_region"
	case StatusRecognitionError:
		return "recognition_error"
	default:
		return "unknown"
	}
}

// Slot text published for non-OK results.
const (
	EmptyRegionText = "Empty region"
	ErrorTextPrefix = "Error: "
)

// Result is the ephemeral outcome for one region in one tick.
type Result struct {
	RegionID int
	Status   Status
	// Text is the trimmed recognized text for StatusOK.
	Text string
	// Err holds the recognizer failure for StatusRecognitionError.
	Err error
}

// SlotText is the text written to the region's slot, including placeholders
// for empty regions and recognition failures.
func (r Result) SlotText() string {
	switch r.Status {
	case StatusEmptyRegion:
		return EmptyRegionText
	case StatusRecognitionError:
		if r.Err == nil {
			return ErrorTextPrefix + "unknown"
		}
		return ErrorTextPrefix + r.Err.Error()
	default:
		return r.Text
	}
}
