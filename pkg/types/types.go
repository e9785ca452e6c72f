package types

type DBConfig struct {
	URI             string
	Timeout         int
	IdleConnTimeout int
	MaxPoolSize     uint64
	DBNamePrefix    string
}

type LocalDBConfig struct {
	Path    string
	Timeout int
}
