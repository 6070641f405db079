package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/crossbeam-network/crossbeam/cmd/rpc"
	"github.com/crossbeam-network/crossbeam/fsm"
	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/crossbeam-network/crossbeam/lib/crypto"
	"github.com/crossbeam-network/crossbeam/store"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{Use: "crossbeam", Short: "crossbeam is a cross-chain settlement daemon"}

	dataDir string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "start the settlement daemon",
	Run: func(cmd *cobra.Command, args []string) {
		Start()
	},
}

func init() {
	startCmd.Flags().StringVar(&dataDir, "data-dir", "", "the path of the data directory")
	rootCmd.AddCommand(startCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func Start() {
	l := lib.NewDefaultLogger()
	config, genesis := InitializeDataDirectory(dataDir, l)
	logger := lib.NewLogger(lib.LoggerConfig{
		Level: lib.LogLevelFromString(config.LogLevel),
	}, config.DataDirPath)
	if config.ChainId == lib.UnknownChainId {
		logger.Fatal("chainId is not set in the config file")
	}
	db, err := store.New(config, logger)
	if err != nil {
		logger.Fatal(err.Error())
	}
	// the funded port stands in for the chain integration of the deployment
	sm := fsm.New(config.ChainId, crypto.NewAddress(genesis.Owner), db, fsm.NewFundedPort(), logger)
	if err = sm.ApplyGenesis(genesis); err != nil {
		logger.Fatal(err.Error())
	}
	keeper := fsm.NewKeeper(logger)
	if err = keeper.AddChain(sm); err != nil {
		logger.Fatal(err.Error())
	}
	rpc.NewServer(keeper, config, logger).Start()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGABRT)
	s := <-stop
	keeper.Close()
	logger.Infof("Exit command %s received", s)
	os.Exit(0)
}

// InitializeDataDirectory ensures the data directory holds a config and a
// genesis file, creating defaults when absent, and loads both
func InitializeDataDirectory(dataDirPath string, log lib.LoggerI) (lib.Config, *fsm.GenesisState) {
	if dataDirPath == "" {
		dataDirPath = lib.DefaultDataDirPath()
	}
	log.Infof("Reading data directory at %s", dataDirPath)
	if err := os.MkdirAll(dataDirPath, os.ModePerm); err != nil {
		panic(err)
	}
	configFilePath := filepath.Join(dataDirPath, lib.ConfigFilePath)
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		log.Infof("Creating %s file", lib.ConfigFilePath)
		if err = lib.DefaultConfig().WriteToFile(configFilePath); err != nil {
			panic(err)
		}
	}
	config, err := lib.NewConfigFromFile(configFilePath)
	if err != nil {
		panic(err)
	}
	config.DataDirPath = dataDirPath
	genesisFilePath := filepath.Join(dataDirPath, lib.GenesisFilePath)
	if _, e := os.Stat(genesisFilePath); errors.Is(e, os.ErrNotExist) {
		log.Infof("Creating placeholder %s file, set the owner before going live", lib.GenesisFilePath)
		if err = writeDefaultGenesis(genesisFilePath); err != nil {
			panic(err)
		}
	}
	genesis, err := fsm.NewGenesisFromFile(genesisFilePath)
	if err != nil {
		panic(err)
	}
	return config, genesis
}

// writeDefaultGenesis writes a genesis with a zeroed owner address
func writeDefaultGenesis(filePath string) lib.ErrorI {
	genesis := &fsm.GenesisState{Owner: make([]byte, crypto.AddressSize)}
	bz, err := lib.MarshalJSONIndent(genesis)
	if err != nil {
		return err
	}
	if e := os.WriteFile(filePath, bz, os.ModePerm); e != nil {
		return lib.ErrWriteFile(e)
	}
	return nil
}
