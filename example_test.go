package keywedge_test

import (
	"fmt"
	"os"

	"github.com/patchkey/keywedge"
)

func Example() {
	cfg := keywedge.DefaultConfig()
	cfg.PortName = "/dev/ttyUSB0"

	link, err := keywedge.OpenLink(cfg)
	if err != nil {
		fmt.Println("open error:", err)
		return
	}

	script := "hello~I\n;comment lines are not transmitted\nworld~Z2\n"

	session := keywedge.NewSession(link, cfg, nil, os.Stdout)
	if err := session.Run(script, false); err != nil {
		fmt.Println("run error:", err)
	}
}
