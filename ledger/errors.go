package ledger

import (
	"errors"
	"fmt"
)

// ErrStopBeyondLiquidation is a configuration error raised at open time:
// the stop loss sits at or beyond the liquidation price, so the stop could
// never fire before the position is liquidated.
var ErrStopBeyondLiquidation = errors.New("stop loss at or beyond liquidation price")

// ErrInsufficientCash is returned when available cash cannot cover a new
// position's margin plus entry fee.
var ErrInsufficientCash = errors.New("insufficient available cash")

// ContractError signals a broken internal invariant the validator should
// have already ruled out (double open, closing a position that does not
// exist). It is a programming-defect marker: fatal for the instrument in
// the current cycle, never for the whole batch.
type ContractError struct {
	Op         string
	Instrument string
	Msg        string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("ledger contract violation: %s %s: %s", e.Op, e.Instrument, e.Msg)
}

// IsContractViolation reports whether err is a ContractError.
func IsContractViolation(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}
