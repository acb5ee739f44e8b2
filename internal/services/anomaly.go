package services

// AnomalyVerdict is the single-reason-or-none outcome of one proctoring
// check. The string values are the exact phrases the interview client
// displays.
type AnomalyVerdict string

const (
	NoAnomaly           AnomalyVerdict = "All clear"
	MobilePhoneDetected AnomalyVerdict = "Mobile Phone Detected"
	NoPersonDetected    AnomalyVerdict = "No Person Detected"
)

// Object classes from the detector's label set that the anomaly rule
// cares about.
const (
	classPerson    = "person"
	classCellPhone = "cell phone"
)

// EvaluateAnomaly applies the per-frame proctoring rule over raw
// detections. Detections at or below the confidence threshold are
// ignored. Reasons are mutually exclusive by priority: a visible phone
// always wins over a missing person, so a frame showing a phone but no
// person still reports the phone. Each call is stateless; no smoothing
// across frames.
func EvaluateAnomaly(detections []Detection, confidenceThreshold float64) AnomalyVerdict {
	personDetected := false
	phoneDetected := false

	for _, det := range detections {
		if det.Confidence <= confidenceThreshold {
			continue
		}

		switch det.ClassName {
		case classPerson:
			personDetected = true
		case classCellPhone:
			phoneDetected = true
		}
	}

	if phoneDetected {
		return MobilePhoneDetected
	}
	if !personDetected {
		return NoPersonDetected
	}
	return NoAnomaly
}
