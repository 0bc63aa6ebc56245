package saver

import (
	"os"

	"github.com/parquet-go/parquet-go"
)

func saveParquet[T any](path string, rows []T) error {
	return parquet.WriteFile(path, rows)
}

func loadParquet[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return parquet.ReadFile[T](path)
}
