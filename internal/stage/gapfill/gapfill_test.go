package gapfill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farcloser/spectag/internal/stage/gapfill"
	"github.com/farcloser/spectag/internal/types"
)

func build(pattern string, duration float64) []types.Chunk {
	chunks := types.NewChunks(len(pattern), duration)
	for i, c := range pattern {
		if c == '#' {
			chunks[i].State = types.StateOn
		}
	}

	return chunks
}

func render(chunks []types.Chunk) string {
	out := make([]byte, len(chunks))
	for i, chunk := range chunks {
		out[i] = '_'
		if chunk.State == types.StateOn {
			out[i] = '#'
		}
	}

	return string(out)
}

func TestFillBoundary(t *testing.T) {
	t.Parallel()

	// One 6 second chunk is exactly 0.1 minute.
	chunks := build("#_#", 6)
	assert.Equal(t, 1, gapfill.Fill(chunks, 6, 0.1))
	assert.Equal(t, "###", render(chunks))
	assert.Equal(t, types.AnnotationGapFilled, chunks[1].Annotation)

	chunks = build("#__#", 6)
	assert.Zero(t, gapfill.Fill(chunks, 6, 0.1))
	assert.Equal(t, "#__#", render(chunks))
}

func TestFillIgnoresAdjacency(t *testing.T) {
	t.Parallel()

	chunks := build("##_##", 5)
	chunks[1].Annotation = types.AnnotationPrimarySustain

	assert.Equal(t, 1, gapfill.Fill(chunks, 5, 2))
	assert.Equal(t, "#####", render(chunks))
	assert.Equal(t, types.AnnotationPrimarySustain, chunks[1].Annotation)
}

func TestFillChains(t *testing.T) {
	t.Parallel()

	// 25 OFF chunks of 5 seconds exceed two minutes.
	chunks := build("#__#___#_________________________#", 5)
	filled := gapfill.Fill(chunks, 5, 2)

	assert.Equal(t, 5, filled)
	assert.Equal(t, "########_________________________#", render(chunks))
}

func TestFillNeverRemoves(t *testing.T) {
	t.Parallel()

	chunks := build("_#_____#_", 60)
	assert.Zero(t, gapfill.Fill(chunks, 60, 2))
	assert.Equal(t, "_#_____#_", render(chunks))
}
