package main

// Copyright (c) 2025 Colin McRae

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/predrag3141/PSLQ/bignumber"

	"github.com/predrag3141/ISNF/knownanswertest"
	"github.com/predrag3141/ISNF/snfops"
)

const (
	minDimension       = 2
	dimensionIncr      = 2
	maxDimension       = 8
	numTests           = 1000
	maxFactor          = 4
	reportingPeriod    = 100
	bigNumberPrecision = 1500
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: go run ./cmd base_directory")
		return
	}
	err := bignumber.Init(bigNumberPrecision)
	if err != nil {
		fmt.Printf("Could not initialize bignumber: %q\n", err.Error())
		return
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for dim := minDimension; dim <= maxDimension; dim += dimensionIncr {
		err = runDimension(dim, os.Args[1], rng, "main")
		if err != nil {
			fmt.Printf("%q\n", err.Error())
			return
		}
	}
}

func runDimension(dim int, baseDirectory string, rng *rand.Rand, caller string) error {
	caller = fmt.Sprintf("%s-runDimension", caller)
	kl, err := knownanswertest.NewKATLog(baseDirectory, dim, reportingPeriod)
	if err != nil {
		return fmt.Errorf("%s: could not create log: %q", caller, err.Error())
	}
	defer kl.Close()

	for testNbr := 0; testNbr < numTests; testNbr++ {
		err = oneTest(kl, dim, rng, caller)
		if err != nil {
			return fmt.Errorf("%s: test %d failed to run: %q", caller, testNbr, err.Error())
		}
	}
	testsRun, testsPassed := kl.Counts()
	fmt.Printf("dim %d: %d of %d tests passed\n", dim, testsPassed, testsRun)
	return nil
}

func oneTest(kl *knownanswertest.KATLog, dim int, rng *rand.Rand, caller string) error {
	caller = fmt.Sprintf("%s-oneTest", caller)
	sc, err := knownanswertest.NewSNFContext(dim, maxFactor, rng)
	if err != nil {
		return fmt.Errorf("%s: could not create test case: %q", caller, err.Error())
	}

	// A matrix the computation rejects counts as a failed test, not a failed run
	var res *snfops.Result
	res, err = snfops.Compute(sc.Input, dim)
	if err != nil {
		sc.RecordError(err)
	} else {
		err = sc.Update(res)
		if err != nil {
			return fmt.Errorf("%s: %q", caller, err.Error())
		}
	}
	err = kl.ReportProgress(sc)
	if err != nil {
		return err
	}
	return kl.ReportResults(sc)
}
