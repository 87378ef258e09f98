package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilObservabilityIsNoOp(t *testing.T) {
	var o *Observability

	assert.NotPanics(t, func() {
		ctx, end := o.StartSpan(context.Background(), "pipeline")
		end(errors.New("boom"))
		o.RecordPipeline(ctx, time.Millisecond, "done")
		o.Shutdown()
	})
}

func TestStartSpan_ReturnsDerivedContext(t *testing.T) {
	o := &Observability{}
	ctx := context.Background()

	got, end := o.StartSpan(ctx, "dispatch")
	end(nil)
	assert.Equal(t, ctx, got)
}
