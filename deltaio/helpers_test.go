package deltaio

import (
	"io/ioutil"
	"os"

	"github.com/klauspost/compress/gzip"
)

func readAll(path string) (string, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readAllGzip(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer gz.Close()
	b, err := ioutil.ReadAll(gz)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
