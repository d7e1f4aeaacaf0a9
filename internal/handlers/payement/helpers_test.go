package payement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEurCents(t *testing.T) {
	// 19.99 n'est pas représentable exactement en float64 ; la troncature
	// donnerait 1998.
	assert.Equal(t, int64(1999), eurCents(19.99))
	assert.Equal(t, int64(1000), eurCents(10.00))
	assert.Equal(t, int64(5), eurCents(0.05))
	assert.Equal(t, int64(0), eurCents(0))
	assert.Equal(t, int64(129995), eurCents(1299.95))
}
