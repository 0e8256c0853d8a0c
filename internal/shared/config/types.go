package config

type Config struct {
	DB         DBConfig         `yaml:"db" mapstructure:"db"`
	Mongo      MongoConfig      `yaml:"mongo" mapstructure:"mongo"`
	HTTPServer HTTPServerConfig `yaml:"httpserver" mapstructure:"httpserver"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Game       GameConfig       `yaml:"game" mapstructure:"game"`
	JWTSecret  string           `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

type DBConfig struct {
	// driver: mysql / sqlite
	Driver   string `yaml:"driver" mapstructure:"driver"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	// sqlite 模式下的数据库文件路径
	File    string `yaml:"file" mapstructure:"file"`
	MaxIdle int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn int    `yaml:"max_conn" mapstructure:"max_conn"`
}

type MongoConfig struct {
	URI    string `yaml:"uri" mapstructure:"uri"`
	DBName string `yaml:"dbname" mapstructure:"dbname"`
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

type GameConfig struct {
	// 平衡表 JSON 路径；为空时使用 balance 包内置默认表
	BalanceData string `yaml:"balance_data" mapstructure:"balance_data"`
	// 快队列 tick 间隔（秒）：建造/训练/行军
	TickSeconds int `yaml:"tick_seconds" mapstructure:"tick_seconds"`
	// 野蛮人 AI 的慢 tick 间隔（分钟）
	BarbarianMinutes int `yaml:"barbarian_minutes" mapstructure:"barbarian_minutes"`
}
