// Copyright (c) 2022 The rcproxy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"): you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	redis "github.com/rcproxy/goredisasync"
	"github.com/rcproxy/goredisasync/config"
	"github.com/rcproxy/goredisasync/pkg/logging"
	"github.com/rcproxy/goredisasync/web"
)

var (
	configPath      = flag.String("p", "conf", "Config file path")
	basicConfigFile = flag.String("c", "redis-bench.yaml", "Basic config filename")
	showVersion     = flag.Bool("v", false, "Show version")
	help            = flag.Bool("h", false, "Show usage info")
	pingCount       = flag.Int("n", 1, "Number of PING commands to submit once connected")
)

var (
	CommitSHA string
	Tag       string
	BuildTime string
)

func init() {
	if len(Tag) < 1 {
		Tag = "unknown"
	}
	if len(CommitSHA) < 1 {
		CommitSHA = "unknown"
	}
	if len(BuildTime) < 1 {
		BuildTime = "unknown"
	}
	web.Version = Tag
}

const banner string = `
___________________________________________  ___  __
___  __ \_  ____/__  __ \__  __ \_  __ \_  |/ / \/ /
__  /_/ /  /    __  /_/ /_  /_/ /  / / /_    /__  /
_  _, _// /___  _  ____/_  _, _// /_/ /_    | _  /
/_/ |_| \____/  /_/     /_/ |_| \____/ /_/|_| /_/

`

func parseCli() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("version: %s\ncommit: %s\ntime: %s\n", Tag, CommitSHA, BuildTime)
		os.Exit(0)
	}
	if *help {
		flag.Usage()
		os.Exit(0)
	}
}

func main() {
	parseCli()

	configFile := path.Join(*configPath, *basicConfigFile)
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logging.Errorf("parse config file err:%v", err)
		return
	}

	if err = logging.InitializeLogger(
		logging.WithPath(cfg.LogPath),
		logging.WithExpireDay(cfg.LogExpireDay),
		logging.WithLogLevel(cfg.LogLevel),
	); err != nil {
		logging.Errorf("failed to initialize logger, err: %s", err)
		return
	}

	fmt.Print(banner)
	fmt.Printf("goredisasync version: %s\n", Tag)
	fmt.Printf("goredisasync started, pid: %d\n", syscall.Getpid())
	logging.Infof("goredisasync started, pid: %d, version: %s", syscall.Getpid(), Tag)

	if cfg.WebPort > 0 {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		gin.SetMode(gin.ReleaseMode)
		ginSrv := gin.New()
		web.Init(ginSrv)
		httpSrv := &http.Server{Handler: ginSrv, Addr: addr}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil {
				logging.Errorf("failed to start http server, err: %s", err)
			}
		}()
	}

	cl, err := newClient(cfg)
	if err != nil {
		logging.Errorf("failed to construct client: %s", err)
		return
	}

	if err := config.Watch(configFile, reloadCallback(cl)); err != nil {
		logging.Errorf("failed to watch config file, live reload disabled: %s", err)
	}

	cl.OnConnect(func() {
		logging.Infof("connected to redis")
		for i := 0; i < *pingCount; i++ {
			n := i
			cl.Submit([][]byte{[]byte("PING")}, func(reply *redis.Reply, err error) {
				if err != nil {
					logging.Errorf("ping %d failed: %s", n, err)
					return
				}
				logging.Infof("ping %d reply: %s", n, reply.Str)
			})
		}
	})
	cl.OnDisconnect(func() { logging.Infof("disconnected from redis") })
	cl.OnError(func(msg string) { logging.Errorf("client error: %s", msg) })

	if err := cl.Connect(); err != nil {
		logging.Errorf("connect failed: %s", err)
		return
	}

	select {}
}

func newClient(cfg *config.Config) (*redis.Client, error) {
	opts := []redis.Option{
		redis.WithConnectTimeout(cfg.Redis.ConnectTimeout),
		redis.WithCommandTimeout(cfg.Redis.CommandTimeout),
		redis.WithMaxPending(cfg.Redis.MaxPending),
		redis.WithCarryWaitingQueue(cfg.Redis.CarryWaitingQueue),
	}
	if cfg.Redis.ReconnectDelay > 0 || cfg.Redis.ReconnectMaxTries > 0 {
		opts = append(opts, redis.WithReconnect(
			time.Duration(cfg.Redis.ReconnectDelay)*time.Millisecond,
			cfg.Redis.ReconnectMaxTries,
		))
	}
	if cfg.Redis.UnixPath != "" {
		opts = append(opts, redis.WithUnixPath(cfg.Redis.UnixPath))
	} else {
		opts = append(opts, redis.WithHostPort(cfg.Redis.Host, cfg.Redis.Port))
	}
	return redis.New(opts...)
}

// reloadCallback pushes a re-read config's live-adjustable fields onto
// an already-running client: timeouts, max_pending, and reconnect
// policy all have live setters, while endpoint, TLS, and socket options
// only take effect on the next connect attempt.
func reloadCallback(cl *redis.Client) func(*config.Config) {
	return func(cfg *config.Config) {
		cl.SetCommandTimeout(cfg.Redis.CommandTimeout)
		cl.SetMaxPending(cfg.Redis.MaxPending)
		cl.SetReconnect(
			cfg.Redis.ReconnectDelay > 0 || cfg.Redis.ReconnectMaxTries > 0,
			time.Duration(cfg.Redis.ReconnectDelay)*time.Millisecond,
			cfg.Redis.ReconnectMaxTries,
		)
		cl.SetResumeWaitingOnReconnect(cfg.Redis.CarryWaitingQueue)
		logging.Infof("applied reloaded config: command_timeout=%s max_pending=%s",
			strconv.Itoa(cfg.Redis.CommandTimeout), strconv.Itoa(cfg.Redis.MaxPending))
	}
}
