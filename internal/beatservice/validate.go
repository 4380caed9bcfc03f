package beatservice

import "github.com/starford/collabeat/internal/apperr"

// MaxHistory is the largest metadata history a beat may already carry.
const MaxHistory = 13

// VolumeExceededMessage is reported when the history is over MaxHistory.
// The wording predates the current limit and is part of the host contract.
const VolumeExceededMessage = "Can not be more than 10 beats"

// ValidateHistory rejects a call whose history holds more than MaxHistory entries.
func ValidateHistory(count int) error {
	if count > MaxHistory {
		return apperr.New(apperr.KindVolumeExceeded, VolumeExceededMessage, nil)
	}
	return nil
}
