package jobs

import "context"

// SweepRentals applies due calendar transitions: unpaid pending rentals past
// their start are cancelled, confirmed ones start, finished ones complete.
func (jr *JobRunner) SweepRentals() {
	jr.runWithRecovery("SweepRentals", func(ctx context.Context) error {
		n, err := jr.rentals.AdvanceDue(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			jr.log.Info("rentals advanced", map[string]interface{}{"count": n})
		}
		return nil
	})
}
