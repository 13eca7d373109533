package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixture_RecordsWhileRunning(t *testing.T) {
	var direct []Record
	f := NewFixture(TestData{Name: "A t1"}, func(r Record) { direct = append(direct, r) })

	f.Info("step %d", 1)
	f.Note("a note")
	f.Alert("careful")
	f.Markup("*bold*")

	records := f.Complete()
	require.Len(t, records, 4)
	assert.Equal(t, InformerInfo, records[0].Kind)
	assert.Equal(t, "step 1", records[0].Message)
	assert.Equal(t, InformerNote, records[1].Kind)
	assert.Equal(t, InformerAlert, records[2].Kind)
	assert.Equal(t, InformerMarkup, records[3].Kind)
	assert.Equal(t, "*bold*", records[3].Message)
	assert.Empty(t, direct)
}

func TestFixture_DirectAfterComplete(t *testing.T) {
	var direct []Record
	f := NewFixture(TestData{Name: "late"}, func(r Record) { direct = append(direct, r) })

	f.Info("during")
	records := f.Complete()
	f.Info("after")

	assert.Len(t, records, 1)
	require.Len(t, direct, 1)
	assert.Equal(t, "after", direct[0].Message)
	assert.Len(t, f.Complete(), 1, "records are frozen after completion")
}

func TestFixture_NilDirect(t *testing.T) {
	f := NewFixture(TestData{Name: "quiet"}, nil)
	f.Complete()
	assert.NotPanics(t, func() { f.Note("dropped") })
	assert.Equal(t, "quiet", f.Name())
}

func TestFixture_Detach(t *testing.T) {
	var direct []Record
	f := NewFixture(TestData{Name: "detached"}, func(r Record) { direct = append(direct, r) })

	f.Info("during")
	f.Detach()
	f.Alert("dropped")

	assert.Empty(t, direct)
	assert.Len(t, f.Complete(), 1)
}
