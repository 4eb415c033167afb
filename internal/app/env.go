package app

import (
    "bufio"
    "errors"
    "fmt"
    "os"
    "strings"
)

// LoadEnvFiles loads dotenv files of KEY=VALUE pairs into the process
// environment. Later files override earlier ones; variables already present
// in the environment before the first file are kept. Lines starting with '#'
// and blank lines are ignored, and an optional "export " prefix is accepted.
// Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    preset := make(map[string]bool)
    for _, kv := range os.Environ() {
        if eq := strings.IndexByte(kv, '='); eq > 0 && kv[eq+1:] != "" {
            preset[kv[:eq]] = true
        }
    }
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        if err := loadEnvFile(p, preset); err != nil {
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return fmt.Errorf("env file %s: %w", p, err)
        }
    }
    return nil
}

func loadEnvFile(path string, preset map[string]bool) error {
    f, err := os.Open(path)
    if err != nil {
        return err
    }
    defer f.Close()

    scanner := bufio.NewScanner(f)
    for scanner.Scan() {
        line := strings.TrimSpace(scanner.Text())
        if line == "" || strings.HasPrefix(line, "#") {
            continue
        }
        line = strings.TrimPrefix(line, "export ")
        eq := strings.IndexByte(line, '=')
        if eq <= 0 {
            continue
        }
        key := strings.TrimSpace(line[:eq])
        if preset[key] {
            continue
        }
        _ = os.Setenv(key, unquote(strings.TrimSpace(line[eq+1:])))
    }
    return scanner.Err()
}

func unquote(val string) string {
    if len(val) >= 2 {
        if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
            return val[1 : len(val)-1]
        }
    }
    return val
}
