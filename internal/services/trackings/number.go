package trackings

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	trackingNumberPrefix = "PPS"
	suffixLen            = 3
	base36Alphabet       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewTrackingNumber: PPS + unix-миллисекунды в base36 + 3 случайных символа, всё в верхнем регистре.
func NewTrackingNumber(now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString(trackingNumberPrefix)
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))

	radix := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < suffixLen; i++ {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", errors.Wrap(err, "random suffix")
		}
		b.WriteByte(base36Alphabet[n.Int64()])
	}
	return b.String(), nil
}
