//	@title			Nodeflow API
//	@version		1.0
//	@description	Workflow automation server with manual execution orchestration
//	@BasePath		/api/v0

package main

import "github.com/nodeflow-io/nodeflow/cli"

func main() {
	cli.Execute()
}
