package optimizer

import "fmt"

// NoListingsForItemError reports an item whose filtered listing set came back
// empty. A source failure or timeout for the item ends up here too.
type NoListingsForItemError struct {
	Index   int
	Caliber string
	Cause   error
}

func (e *NoListingsForItemError) Error() string {
	return fmt.Sprintf("no listings for %s matching filters", e.Caliber)
}

func (e *NoListingsForItemError) Unwrap() error { return e.Cause }
