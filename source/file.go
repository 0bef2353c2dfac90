// Package source supplies raw telemetry lines to the pipeline from log
// files, live telnet feeds, or MQTT topics. Sources own all I/O: the core
// parser and aggregator never open resources themselves, so stream
// acquisition errors surface here before any record reaches them.
package source

import (
	"bufio"
	"fmt"
	"os"
)

// maxLineBytes bounds a single log line; anything larger is an upstream bug.
const maxLineBytes = 1024 * 1024

// ReadFile streams every line of the log file at path to handle, in order.
// The handler sees raw lines; deciding what is parseable is the parser's job.
func ReadFile(path string, handle func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		handle(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log file %s: %w", path, err)
	}
	return nil
}
