package lib

import (
	"os"
	"path/filepath"
)

/* This file implements the 'user controlled' configuration of each module of the node */

const (
	// GLOBAL CONSTANTS
	UnknownChainId = uint64(0) // the default 'unknown' chain id

	// FILE NAMES in the 'data directory'
	ConfigFilePath  = "config.json"  // the file path for the node configuration
	GenesisFilePath = "genesis.json" // the file path for the genesis state
)

// Config is the structure of the user configuration options for a Crossbeam node
type Config struct {
	MainConfig  // main options spanning over all modules
	RPCConfig   // rpc API options
	StoreConfig // persistence options
}

// DefaultConfig() returns a Config with developer set options
func DefaultConfig() Config {
	return Config{
		MainConfig:  DefaultMainConfig(),
		RPCConfig:   DefaultRPCConfig(),
		StoreConfig: DefaultStoreConfig(),
	}
}

// MAIN CONFIG BELOW

type MainConfig struct {
	LogLevel    string `json:"logLevel"`    // any level includes the levels above it: debug < info < warn < error
	ChainId     uint64 `json:"chainId"`     // the identifier of the chain this settlement instance serves
	DataDirPath string `json:"dataDirPath"` // the filesystem location of the data directory
}

// DefaultMainConfig() sets log level to 'info'
func DefaultMainConfig() MainConfig {
	return MainConfig{
		LogLevel:    "info",
		ChainId:     1,
		DataDirPath: DefaultDataDirPath(),
	}
}

// RPC CONFIG BELOW

type RPCConfig struct {
	RPCPort  string `json:"rpcPort"`  // the port for the read-only query surface
	TimeoutS int    `json:"timeoutS"` // the http server read and write timeout in seconds
}

// DefaultRPCConfig() serves the query surface on :50000
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		RPCPort:  "50000",
		TimeoutS: 3,
	}
}

// STORE CONFIG BELOW

type StoreConfig struct {
	DBName   string `json:"dbName"`   // the name of the database directory
	InMemory bool   `json:"inMemory"` // non-durable store, meant for testing only
}

// DefaultStoreConfig() uses a durable on-disk database
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		DBName:   "crossbeam",
		InMemory: false,
	}
}

// NewConfigFromFile() populates a Config object from a JSON file at the path
func NewConfigFromFile(filePath string) (Config, ErrorI) {
	// start with the default config to allow partially populated files
	config := DefaultConfig()
	bz, err := os.ReadFile(filePath)
	if err != nil {
		return config, ErrReadFile(err)
	}
	if e := UnmarshalJSON(bz, &config); e != nil {
		return config, e
	}
	return config, nil
}

// WriteToFile() saves the Config object to a JSON file
func (c Config) WriteToFile(filepath string) ErrorI {
	configBz, err := MarshalJSONIndent(c)
	if err != nil {
		return err
	}
	if e := os.WriteFile(filepath, configBz, os.ModePerm); e != nil {
		return ErrWriteFile(e)
	}
	return nil
}

// DefaultDataDirPath() returns the default data directory: $HOME/.crossbeam
func DefaultDataDirPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".crossbeam")
}
