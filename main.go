package main

import "vistream/internal/app"

// @title           Vistream Identity API
// @version         1.0
// @description     Регистрация зрителей и авторов с подтверждением email и смена пароля по одноразовому коду.
// @BasePath        /
func main() {
	app.Run()
}
