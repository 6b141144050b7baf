package serialport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, Options{Port: "/dev/ttyUSB0", Baud: 115200}.Validate())
	assert.Error(t, Options{Baud: 115200}.Validate())
	assert.Error(t, Options{Port: "/dev/ttyUSB0"}.Validate())
	assert.Error(t, Options{Port: "/dev/ttyUSB0", Baud: -1}.Validate())
}

func TestOptions_config(t *testing.T) {
	c := Options{Port: "/dev/ttyACM0", Baud: 9600}.config()
	assert.Equal(t, "/dev/ttyACM0", c.Name)
	assert.Equal(t, 9600, c.Baud)
	assert.Zero(t, c.ReadTimeout)
}

func TestOpen_Invalid(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}
