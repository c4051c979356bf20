package knownanswertest

// Copyright (c) 2025 Colin McRae

import (
	"bufio"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/predrag3141/ISNF/snfops"
)

func TestKATLog(t *testing.T) {
	const (
		dim             = 3
		numTests        = 10
		reportingPeriod = 4
	)

	baseDir := t.TempDir()
	kl, err := NewKATLog(baseDir, dim, reportingPeriod)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(17))
	expected := make([]*SNFContext, numTests)
	for testNbr := 0; testNbr < numTests; testNbr++ {
		var sc *SNFContext
		sc, err = NewSNFContext(dim, 3, rng)
		require.NoError(t, err)
		var res *snfops.Result
		res, err = snfops.Compute(sc.Input, dim)
		require.NoError(t, err)
		require.NoError(t, sc.Update(res))
		require.NoError(t, kl.ReportProgress(sc))
		require.NoError(t, kl.ReportResults(sc))
		expected[testNbr] = sc
	}
	testsRun, testsPassed := kl.Counts()
	require.Equal(t, numTests, testsRun)
	require.Equal(t, numTests, testsPassed)
	require.NoError(t, kl.Close())

	// Progress has a header and a line every reportingPeriod tests
	progressLines := readLines(t, kl.progressFilePath)
	require.Len(t, progressLines, 1+numTests/reportingPeriod)
	require.Equal(t, strings.Split(progressLines[0], ","), []string{
		timeSinceStartHeader, testsRunHeader, testsPassedHeader, testsFailedHeader, maxEntryHeader,
	})
	for i, line := range progressLines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 5)
		require.Equal(t, []string{
			strconv.Itoa((i + 1) * reportingPeriod), strconv.Itoa((i + 1) * reportingPeriod), "0",
		}, fields[1:4])
	}

	// Results has one JSON line per test
	resultLines := readLines(t, kl.resultFilePath)
	require.Len(t, resultLines, numTests)
	for i, line := range resultLines {
		var sc SNFContext
		require.NoError(t, json.Unmarshal([]byte(line), &sc))
		require.Equal(t, *expected[i], sc)
	}

	// Files are where they belong
	require.Equal(t, filepath.Join(baseDir, progressDirName), filepath.Dir(kl.progressFilePath))
	require.Equal(t, filepath.Join(baseDir, resultsDirName), filepath.Dir(kl.resultFilePath))
	require.True(t, strings.HasPrefix(filepath.Base(kl.resultFilePath), "dim_3-"))
}

func TestNewKATLog_InvalidInput(t *testing.T) {
	_, err := NewKATLog(t.TempDir(), 3, 0)
	require.Error(t, err)

	// The base directory is a file
	baseDir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(baseDir, []byte("x"), 0644))
	_, err = NewKATLog(baseDir, 3, 1)
	require.Error(t, err)
}

func readLines(t *testing.T, path string) []string {
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}
