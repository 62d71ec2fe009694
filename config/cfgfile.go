package config

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/afjoseph/commongo/print"
	"gopkg.in/yaml.v3"
)

// LoadYaml overlays the fields present in the YAML file at 'path' onto self.
// Unknown keys are rejected so typos don't silently fall back to defaults
func (self *Config) LoadYaml(path string) error {
	print.DebugFunc()
	fd, err := os.Open(path)
	if err != nil {
		return print.ErrorWrapf(ERR_CONFIG_PARSE, err.Error())
	}
	defer fd.Close()
	decoder := yaml.NewDecoder(fd)
	decoder.KnownFields(true)
	err = decoder.Decode(self)
	switch {
	case errors.Is(err, io.EOF):
		// Empty file: nothing to overlay
	case err != nil:
		return print.ErrorWrapf(ERR_CONFIG_PARSE, "%s: %v", path, err)
	}
	return nil
}

// LoadCommonCfg reads a "Common.cfg" file made of "<Key> <Value>" lines.
// Only FileName, FileSize and PieceSize matter here; the choking parameters
// belong to the system under test and are skipped
func (self *Config) LoadCommonCfg(path string) error {
	print.DebugFunc()
	return forEachCfgLine(path, func(lineNum int, fields []string) error {
		if len(fields) < 2 {
			return print.ErrorWrapf(ERR_CONFIG_PARSE,
				"%s:%d: expected '<Key> <Value>'", path, lineNum)
		}
		switch fields[0] {
		case "FileName":
			self.FileName = fields[1]
		case "FileSize":
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return print.ErrorWrapf(ERR_CONFIG_PARSE,
					"%s:%d: bad FileSize: %v", path, lineNum, err)
			}
			self.FileSize = n
		case "PieceSize":
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return print.ErrorWrapf(ERR_CONFIG_PARSE,
					"%s:%d: bad PieceSize: %v", path, lineNum, err)
			}
			self.PieceLength = n
		default:
			print.Debugf("Ignoring key [%s] in %s\n", fields[0], path)
		}
		return nil
	})
}

// LoadPeerInfoCfg reads a "PeerInfo.cfg" file made of
// "<peerId> <host> <port> <hasFile>" lines. It replaces the peer list, in
// file order, and seeds every peer with hasFile == 1
func (self *Config) LoadPeerInfoCfg(path string) error {
	print.DebugFunc()
	peerIds := []int{}
	seedPeerIds := []int{}
	err := forEachCfgLine(path, func(lineNum int, fields []string) error {
		if len(fields) < 4 {
			return print.ErrorWrapf(ERR_CONFIG_PARSE,
				"%s:%d: expected '<peerId> <host> <port> <hasFile>'",
				path, lineNum)
		}
		peerId, err := strconv.Atoi(fields[0])
		if err != nil {
			return print.ErrorWrapf(ERR_CONFIG_PARSE,
				"%s:%d: bad peer id: %v", path, lineNum, err)
		}
		peerIds = append(peerIds, peerId)
		if fields[3] == "1" {
			seedPeerIds = append(seedPeerIds, peerId)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(peerIds) == 0 {
		return print.ErrorWrapf(ERR_CONFIG_PARSE, "%s has no peers", path)
	}
	self.PeerIds = peerIds
	self.SeedPeerIds = seedPeerIds
	return nil
}

// forEachCfgLine calls 'fn' with the whitespace-separated fields of every
// non-blank, non-comment line in 'path'
func forEachCfgLine(path string, fn func(int, []string) error) error {
	fd, err := os.Open(path)
	if err != nil {
		return print.ErrorWrapf(ERR_CONFIG_PARSE, err.Error())
	}
	defer fd.Close()
	scanner := bufio.NewScanner(fd)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(lineNum, strings.Fields(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return print.ErrorWrapf(ERR_CONFIG_PARSE, err.Error())
	}
	return nil
}
