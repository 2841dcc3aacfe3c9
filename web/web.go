// Package web 内嵌的单页界面
package web

import _ "embed"

//go:embed index.html
var Index []byte
