package knownanswertest

// Copyright (c) 2025 Colin McRae

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	progressDirName      = "progress"
	resultsDirName       = "results"
	timeSinceStartHeader = "time since start"
	testsRunHeader       = "tests run"
	testsPassedHeader    = "tests passed"
	testsFailedHeader    = "tests failed"
	maxEntryHeader       = "max transform entry"
)

// KATLog holds the state of a known answer test logger
type KATLog struct {
	progressFile      *os.File
	resultFile        *os.File
	progressFilePath  string
	resultFilePath    string
	reportingPeriod   int
	startTime         time.Time
	testsRun          int
	testsPassed       int
	maxTransformEntry int64
}

// NewKATLog creates an instance of the KAT logger, with files for progress and results
// in subdirectories of baseDir named after the dimension and the current time. A line
// of progress is written every reportingPeriod tests.
func NewKATLog(baseDir string, dimension, reportingPeriod int) (*KATLog, error) {
	// Scalar initializations
	if reportingPeriod < 1 {
		return nil, fmt.Errorf("NewKATLog: reporting period %d is not positive", reportingPeriod)
	}
	retVal := &KATLog{}
	var err error
	retVal.startTime = time.Now()
	timeStamp := retVal.startTime.Format("2006_01_02T15_04_05.000000000")
	retVal.reportingPeriod = reportingPeriod

	// Progress and results directories
	for _, dirName := range []string{progressDirName, resultsDirName} {
		err = createDirectory(filepath.Join(baseDir, dirName), "NewKATLog")
		if err != nil {
			return nil, err
		}
	}

	// Progress file
	retVal.progressFilePath = filepath.Join(
		baseDir, progressDirName, fmt.Sprintf("dim_%d-%s", dimension, timeStamp),
	)
	retVal.progressFile, err = os.OpenFile(
		retVal.progressFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"NewKATLog: could not open %s: %q", retVal.progressFilePath, err.Error())
	}
	_, err = retVal.progressFile.WriteString(fmt.Sprintf(
		"%s,%s,%s,%s,%s\n",
		timeSinceStartHeader, testsRunHeader, testsPassedHeader, testsFailedHeader, maxEntryHeader,
	))
	if err != nil {
		return nil, fmt.Errorf(
			"NewKATLog: could not write header to %s: %q", retVal.progressFilePath, err.Error(),
		)
	}

	// Results file
	retVal.resultFilePath = filepath.Join(
		baseDir, resultsDirName, fmt.Sprintf("dim_%d-%s", dimension, timeStamp),
	)
	retVal.resultFile, err = os.OpenFile(
		retVal.resultFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"NewKATLog: could not open %s: %q", retVal.resultFilePath, err.Error(),
		)
	}
	return retVal, nil
}

// ReportProgress counts the test in sc, and writes a line of progress every
// kl.reportingPeriod tests.
func (kl *KATLog) ReportProgress(sc *SNFContext) error {
	kl.testsRun++
	if sc.Passed() {
		kl.testsPassed++
	}
	if sc.MaxTransformEntry > kl.maxTransformEntry {
		kl.maxTransformEntry = sc.MaxTransformEntry
	}
	if (kl.testsRun % kl.reportingPeriod) != 0 {
		return nil
	}
	_, err := kl.progressFile.WriteString(fmt.Sprintf("%v,%d,%d,%d,%d\n",
		time.Since(kl.startTime), kl.testsRun, kl.testsPassed, kl.testsRun-kl.testsPassed,
		kl.maxTransformEntry,
	))
	if err != nil {
		return fmt.Errorf(
			"ReportProgress: could not write progress to %s: %q",
			kl.progressFilePath, err.Error(),
		)
	}
	return nil
}

// ReportResults writes sc to the results file as one line of JSON
func (kl *KATLog) ReportResults(sc *SNFContext) error {
	resultsAsByteArray, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf(
			"ReportResults: could not marshal results for %s: %q",
			kl.resultFilePath, err.Error(),
		)
	}
	_, err = kl.resultFile.WriteString(string(resultsAsByteArray) + "\n")
	if err != nil {
		return fmt.Errorf(
			"ReportResults: could not write results to %s: %q",
			kl.resultFilePath, err.Error(),
		)
	}
	return nil
}

// Counts returns the number of tests run and the number that passed
func (kl *KATLog) Counts() (int, int) {
	return kl.testsRun, kl.testsPassed
}

// Close closes the progress and results files
func (kl *KATLog) Close() error {
	progressErr := kl.progressFile.Close()
	resultErr := kl.resultFile.Close()
	if progressErr != nil {
		return fmt.Errorf("Close: could not close %s: %q", kl.progressFilePath, progressErr.Error())
	}
	if resultErr != nil {
		return fmt.Errorf("Close: could not close %s: %q", kl.resultFilePath, resultErr.Error())
	}
	return nil
}

func createDirectory(directoryPath, caller string) error {
	caller = fmt.Sprintf("%s-createDirectory", caller)
	_, err := os.Stat(directoryPath)
	if os.IsNotExist(err) {
		// Directory does not exist, create it
		err = os.MkdirAll(directoryPath, 0755)
		if err != nil {
			return fmt.Errorf(
				"%s: could not create directory %s: %q", caller, directoryPath, err,
			)
		}
	}
	if err != nil {
		return fmt.Errorf(
			"%s: could not stat directory %s before making it: %q", caller, directoryPath, err,
		)
	}
	_, err = os.Stat(directoryPath)
	if err != nil {
		return fmt.Errorf(
			"%s: could not stat directory %s after making it: %q",
			caller, directoryPath, err.Error(),
		)
	}
	return nil
}
