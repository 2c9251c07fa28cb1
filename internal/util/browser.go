package util

import (
	"errors"
	"os/exec"
	"runtime"
)

// browserCommands 各平台打开 URL 的命令，按顺序尝试
var browserCommands = map[string][][]string{
	"windows": {
		{"rundll32", "url.dll,FileProtocolHandler"},
		{"explorer"},
	},
	"darwin": {
		{"open"},
	},
	"linux": {
		{"xdg-open"},
		{"sensible-browser"},
		{"firefox"},
		{"google-chrome"},
	},
}

// startCommand 可在测试中替换
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenBrowser 用系统默认浏览器打开 URL，依次尝试当前平台的候选命令
func OpenBrowser(url string) error {
	return openWith(runtime.GOOS, url)
}

func openWith(goos, url string) error {
	candidates, ok := browserCommands[goos]
	if !ok {
		candidates = browserCommands["linux"]
	}

	var errs []error
	for _, cmd := range candidates {
		args := append(append([]string{}, cmd[1:]...), url)
		err := startCommand(cmd[0], args...)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
