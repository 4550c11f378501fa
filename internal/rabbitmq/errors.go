package rabbitmq

import "errors"

// ErrPermanent помечает сообщения, которые не обработать никогда (например, битый JSON).
// Такие сообщения отбрасываются, а не возвращаются в очередь.
var ErrPermanent = errors.New("permanent failure")

func isPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}
