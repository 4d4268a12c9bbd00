package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/hierarchy"
)

type captureUpserter struct {
	batches [][]hierarchy.Wilayah
	err     error
}

func (c *captureUpserter) Upsert(_ context.Context, rows []hierarchy.Wilayah) error {
	if c.err != nil {
		return c.err
	}
	c.batches = append(c.batches, append([]hierarchy.Wilayah(nil), rows...))
	return nil
}

func TestImportCSV(t *testing.T) {
	in := `kode,nama
32,JAWA BARAT
32.01,KAB. BOGOR
32.01.01,Cibinong
32.01.01.2002,Pakansari
x
32.01.01.2002.9,too deep
`
	dst := &captureUpserter{}
	n, skipped, err := importCSV(context.Background(), dst, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 2, skipped)
	require.Len(t, dst.batches, 1)

	rows := dst.batches[0]
	assert.Equal(t, hierarchy.Wilayah{Code: "32", Name: "JAWA BARAT", Level: 1}, rows[0])
	assert.Equal(t, "3201", rows[1].Code)
	assert.Equal(t, "32", rows[1].ParentCode)
	assert.Equal(t, "3201", rows[2].ParentCode)
	assert.Equal(t, "320101", rows[3].ParentCode)
	assert.Equal(t, "3201012002", rows[3].Code)
	assert.Equal(t, 4, rows[3].Level)
}

func TestImportCSVBatches(t *testing.T) {
	var b strings.Builder
	for i := 0; i < batchSize+5; i++ {
		fmt.Fprintf(&b, "32.01.01.%04d,desa\n", i)
	}
	dst := &captureUpserter{}
	n, _, err := importCSV(context.Background(), dst, strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, batchSize+5, n)
	require.Len(t, dst.batches, 2)
	assert.Len(t, dst.batches[1], 5)
}

func TestImportCSVUpsertError(t *testing.T) {
	dst := &captureUpserter{err: errors.New("db down")}
	_, _, err := importCSV(context.Background(), dst, strings.NewReader("32,JAWA BARAT\n"))
	assert.EqualError(t, err, "db down")
}
