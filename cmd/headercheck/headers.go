package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/wire"
)

// readHeadersFile reads the headers of the file at path.
func readHeadersFile(path string) ([]*wire.BlockHeader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	return readHeaders(file)
}

// readHeaders reads hex encoded headers, one per line. Blank lines and lines
// starting with '#' are skipped.
func readHeaders(r io.Reader) ([]*wire.BlockHeader, error) {
	var headers []*wire.BlockHeader
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		header, err := wire.NewBlockHeaderFromStr(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNumber)
		}
		headers = append(headers, header)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return headers, nil
}
