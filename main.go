package main

import (
	"errors"
	"flag"
	"os"

	"github.com/afjoseph/commongo/print"
	"github.com/afjoseph/propfixture/config"
	"github.com/afjoseph/propfixture/fixture"
	"github.com/afjoseph/propfixture/verify"
)

var ERR_BAD_FLAG = errors.New("ERR_BAD_FLAG")

type cliFlags struct {
	mode        *string
	config      *string
	commonCfg   *string
	peerInfoCfg *string
	rootDir     *string
	fileName    *string
	fileSize    *int64
	fillMode    *string
	fillValue   *uint
	reportMode  *string
	pieceLength *int64
	makeTorrent *bool
	debug       *bool
}

func newFlagSet(name string) (*flag.FlagSet, *cliFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return fs, &cliFlags{
		mode:        fs.String("mode", "", "setup|verify"),
		config:      fs.String("config", "", "YAML config file"),
		commonCfg:   fs.String("common_cfg", "", "Common.cfg to read FileName, FileSize and PieceSize from"),
		peerInfoCfg: fs.String("peerinfo_cfg", "", "PeerInfo.cfg to read peer ids and seeds from"),
		rootDir:     fs.String("root_dir", config.DEFAULT_ROOT_DIR, "Directory holding the peer_<id> dirs"),
		fileName:    fs.String("file_name", config.DEFAULT_FILE_NAME, ""),
		fileSize:    fs.Int64("file_size", config.DEFAULT_FILE_SIZE, ""),
		fillMode:    fs.String("fill_mode", string(config.FILLMODE_CONSTANT), "zero|constant"),
		fillValue:   fs.Uint("fill_value", config.DEFAULT_FILL_VALUE, "Byte every file byte equals in 'constant' fill mode"),
		reportMode:  fs.String("report_mode", string(config.REPORTMODE_PERCENTAGE), "percentage|boolean"),
		pieceLength: fs.Int64("piece_length", config.DEFAULT_PIECE_LENGTH, ""),
		makeTorrent: fs.Bool("make_torrent", false, "Write a .torrent for the seed on setup, check pieces on verify"),
		debug:       fs.Bool("debug", false, ""),
	}
}

// loadConfig layers, in order: defaults, -config, -common_cfg, -peerinfo_cfg
// and finally any flag that was explicitly passed to 'fs'
func loadConfig(fs *flag.FlagSet, flags *cliFlags) (*config.Config, error) {
	cfg := config.Default()
	if len(*flags.config) != 0 {
		if err := cfg.LoadYaml(*flags.config); err != nil {
			return nil, err
		}
	}
	if len(*flags.commonCfg) != 0 {
		if err := cfg.LoadCommonCfg(*flags.commonCfg); err != nil {
			return nil, err
		}
	}
	if len(*flags.peerInfoCfg) != 0 {
		if err := cfg.LoadPeerInfoCfg(*flags.peerInfoCfg); err != nil {
			return nil, err
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "root_dir":
			cfg.RootDir = *flags.rootDir
		case "file_name":
			cfg.FileName = *flags.fileName
		case "file_size":
			cfg.FileSize = *flags.fileSize
		case "fill_mode":
			cfg.FillMode, err = config.ParseFillMode(*flags.fillMode)
		case "fill_value":
			if *flags.fillValue > 0xff {
				err = print.ErrorWrapf(ERR_BAD_FLAG,
					"fill_value %d does not fit in a byte", *flags.fillValue)
				return
			}
			cfg.FillValue = byte(*flags.fillValue)
		case "report_mode":
			cfg.ReportMode, err = config.ParseReportMode(*flags.reportMode)
		case "piece_length":
			cfg.PieceLength = *flags.pieceLength
		case "make_torrent":
			cfg.MakeTorrent = *flags.makeTorrent
		}
	})
	if err != nil {
		return nil, err
	}
	print.Debugf("Config: %+v\n", *cfg)
	return cfg, nil
}

func runVerify(cfg *config.Config) error {
	report, err := verify.Verify(cfg)
	if err != nil {
		return err
	}
	report.Print(cfg.ReportMode)
	return nil
}

func run(args []string) error {
	fs, flags := newFlagSet("propfixture")
	err := fs.Parse(args)
	if err != nil {
		return print.ErrorWrapf(ERR_BAD_FLAG, err.Error())
	}
	if *flags.debug {
		print.SetLevel(print.LOG_DEBUG)
	}

	cfg, err := loadConfig(fs, flags)
	if err != nil {
		return err
	}
	switch *flags.mode {
	case "setup":
		err = fixture.Build(cfg)
	case "verify":
		err = runVerify(cfg)
	default:
		err = print.ErrorWrapf(ERR_BAD_FLAG,
			"-mode must be 'setup' or 'verify', got [%s]", *flags.mode)
	}
	if err != nil {
		return err
	}

	return nil
}

func main() {
	exitCode := 0
	err := run(os.Args[1:])
	if err != nil {
		print.Warnln(err.Error())
		exitCode = 1
	}
	<-print.Flush()
	os.Exit(exitCode)
}
