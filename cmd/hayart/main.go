// Command hayart はHayArt文化センターのWebサイトを配信する。
//
// 使い方:
//
//	hayart [serve]       Webサーバーを起動する（既定）
//	hayart healthcheck   ローカルの /health を確認する（Dockerヘルスチェック用）
package main

import (
	"fmt"
	"os"

	"github.com/hayart/web/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
