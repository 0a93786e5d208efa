// Command planner runs the daily planner API.
//
//	@title						Daily Planner API
//	@version					1.0
//	@description				Account registration, bearer-token login and per-user daily planner entries.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

func main() {
	Execute()
}
