// Copyright (c) 2022 The rcproxy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rcproxy/goredisasync/pkg/logging"
)

// Config is the demo CLI's YAML configuration, narrowed from a
// proxy-wide config down to one client endpoint plus the same ambient
// logging/debug-server knobs.
type Config struct {
	WebPort      int         `yaml:"web_port"`
	LogPath      string      `yaml:"log_path"`
	LogLevel     string      `yaml:"log_level"`
	LogExpireDay int         `yaml:"log_expire_day"`
	Redis        redisConfig `yaml:"redis"`
}

type redisConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	UnixPath          string `yaml:"unix_path"`
	Password          string `yaml:"password"`
	ConnectTimeout    int    `yaml:"connect_timeout"`
	CommandTimeout    int    `yaml:"command_timeout"`
	MaxPending        int    `yaml:"max_pending"`
	ReconnectDelay    int    `yaml:"reconnect_delay_ms"`
	ReconnectMaxTries int    `yaml:"reconnect_max_attempts"`
	CarryWaitingQueue bool   `yaml:"carry_waiting_queue"`
}

func LoadConfig(fileName string) (*Config, error) {
	file, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file from %s", fileName)
	}
	var cfg Config
	if err = yaml.Unmarshal(file, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", fileName)
	}
	if err = cfg.validate(); err != nil {
		return nil, errors.Wrapf(err, "config validate failed")
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, ok := logging.LevelMapperRev[c.LogLevel]; !ok {
		return errors.Errorf("unknown log level %s", c.LogLevel)
	}
	if c.Redis.Host == "" && c.Redis.UnixPath == "" {
		return errors.Errorf("redis.host or redis.unix_path is required")
	}
	if c.Redis.Host != "" && c.Redis.UnixPath != "" {
		return errors.Errorf("redis.host and redis.unix_path are mutually exclusive")
	}
	return nil
}
