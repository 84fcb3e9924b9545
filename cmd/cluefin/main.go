// Package main - cluefin CLI
// 일봉 적재 CLI 진입점
//
// 사용법:
//
//	go run ./cmd/cluefin import 005930 000660
//	go run ./cmd/cluefin import overseas --exchange NASDAQ AAPL MSFT
//	go run ./cmd/cluefin db stats
//	go run ./cmd/cluefin serve
package main

import (
	"os"

	"github.com/kgcrom/cluefin-sub000/cmd/cluefin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
