package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestModule(t *testing.T) {
	var r *Resolver

	app := fxtest.New(t,
		Module(),
		fx.Populate(&r),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.NotNil(t, r)
}
