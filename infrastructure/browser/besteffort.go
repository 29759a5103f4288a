package browser

import (
	"time"

	"github.com/sirupsen/logrus"
)

// BestEffort runs op bounded by timeout and tolerates its failure. The error
// is still returned so callers discard it explicitly.
func BestEffort(log *logrus.Entry, name string, timeout time.Duration, op func(timeoutMS float64) error) error {
	err := op(toMillis(timeout))
	if err != nil {
		log.WithError(err).WithField("wait", name).Debug("best-effort wait abandoned")
	}
	return err
}
