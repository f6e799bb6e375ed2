package main

import "github.com/yeorinhieut/novel-dl/cmd"

func main() {
	cmd.Execute()
}
