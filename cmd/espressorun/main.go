// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Program espressorun loads a raw guest memory image and runs it through
// the execution core until the callback sentinel is reached.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/kupua/espresso"
	"github.com/kupua/espresso/gmem"
	"github.com/kupua/espresso/interp"
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] imagefile\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	var (
		entry    = uint(0)
		jitMode  = "disabled"
		verbose  = false
	)

	flag.UintVar(&entry, "entry", entry, "guest address to start execution at")
	flag.StringVar(&jitMode, "jit", jitMode, "disabled, enabled, or debug")
	flag.BoolVar(&verbose, "v", verbose, "trace every interpreted instruction")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	filename := flag.Arg(0)

	image, err := ioutil.ReadFile(filename)
	if err != nil {
		log.Fatal(err)
	}

	mode, err := parseJITMode(jitMode)
	if err != nil {
		log.Fatal(err)
	}

	opts := []espresso.Option{
		espresso.WithJITMode(mode),
		espresso.WithLogger(log.Default()),
	}
	if verbose {
		opts = append(opts, espresso.WithTrace(func(r interp.TraceRecord) {
			log.Printf("%#010x: %#08x", r.Addr, r.Word)
		}))
	}

	core, ok := espresso.New(opts...)
	if !ok {
		log.Fatal("failed to reserve guest address space")
	}
	defer core.Close()

	ga := core.Memory.Alloc(gmem.Application, uint32(len(image)))
	if ga == 0 {
		log.Fatal("failed to allocate guest memory for image")
	}
	for i, b := range image {
		gmem.WriteNoSwap[byte](core.Memory, ga+uint32(i), b)
	}

	s := core.NewThreadState(1)
	start := ga + uint32(entry)

	if err := core.ExecuteSub(s, start); err != nil {
		log.Fatalf("execution stopped: %v", err)
	}

	fmt.Printf("r3 = %#x\n", s.GPR[3])
}

func parseJITMode(s string) (interp.Mode, error) {
	switch s {
	case "disabled":
		return interp.Disabled, nil
	case "enabled":
		return interp.Enabled, nil
	case "debug":
		return interp.Debug, nil
	default:
		return interp.Disabled, fmt.Errorf("unknown jit mode: %s", s)
	}
}
