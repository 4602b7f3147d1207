package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug").GetLevel())
	assert.Equal(t, logrus.WarnLevel, New("WARN").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("chatty").GetLevel())
}
