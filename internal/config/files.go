package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/pkg/errcodes"
)

// readLines строки файла без пустых и комментариев. Пустой путь это пустой список.
func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.ConfigError, fmt.Sprintf("read %s", path))
	}

	var lines []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, domain.WrapError(err, errcodes.ConfigError, fmt.Sprintf("scan %s", path))
	}

	return lines, nil
}

func readCookie(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", domain.WrapError(err, errcodes.ConfigError, fmt.Sprintf("read %s", path))
	}

	return strings.TrimSpace(correctNewlines(string(data))), nil
}

// loadProxies PROXY_LIST и PROXY_FILE вместе.
func loadProxies(p Proxy) ([]egress.Proxy, error) {
	fromFile, err := readLines(p.File)
	if err != nil {
		return nil, err
	}

	return egress.Build(append(slices.Clone(p.List), fromFile...), p.AllowDirect)
}
