package main

import (
	"github.com/ludvigisaksen/PA-AI/tools/linters/enumvalidator"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
