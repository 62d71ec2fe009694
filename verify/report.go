package verify

import (
	"fmt"

	"github.com/afjoseph/commongo/print"
	"github.com/afjoseph/propfixture/config"
)

// Lines renders one peer's result. In percentage mode a partial match also
// reports where the first bad byte is and how many there are
func (self *PeerReport) Lines(mode config.ReportMode) []string {
	client := config.PeerDirName(self.PeerId)
	if !self.Found {
		return []string{
			fmt.Sprintf("Client %s match: File %s not found", client, self.FilePath),
		}
	}
	lines := []string{}
	if self.SizeMismatch() {
		lines = append(lines, fmt.Sprintf(
			"File size mismatch. Expected: %d found: %d",
			self.ExpectedSize, self.ActualSize()))
	}
	switch mode {
	case config.REPORTMODE_BOOLEAN:
		lines = append(lines, fmt.Sprintf("Client %s match: %t",
			client, self.Match.AllMatch()))
	default:
		lines = append(lines, fmt.Sprintf("Client %s match: %.1f%%",
			client, self.Match.ReportedPercentage()))
		if self.Match.Mismatches > 0 {
			lines = append(lines,
				fmt.Sprintf("First mismatch: %d", self.Match.FirstMismatch),
				fmt.Sprintf("Number of mismatches: %d", self.Match.Mismatches))
		}
	}
	if self.Pieces != nil {
		lines = append(lines, fmt.Sprintf("Pieces verified: %d/%d",
			self.Pieces.Count(), self.Pieces.NumOfBits))
	}
	return lines
}

func (self *Report) Lines(mode config.ReportMode) []string {
	lines := []string{}
	for _, peerReport := range self.Peers {
		lines = append(lines, peerReport.Lines(mode)...)
	}
	lines = append(lines, fmt.Sprintf("Peers holding file: %d/%d [%s]",
		self.Holders.Count(), self.Holders.NumOfBits,
		self.Holders.DumpAsBitstring()))
	return lines
}

func (self *Report) Print(mode config.ReportMode) {
	for _, line := range self.Lines(mode) {
		print.Infoln(line)
	}
}
