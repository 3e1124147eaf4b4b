// @title           PDF Chat Widget API
// @version         1.0
// @description     Browser front end of the PDF chat widget. Questions and uploads are queued and the page polls the chat snapshot.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package utils

//run redis (optional, CHATPDF_USE_REDIS=true)
//docker run -p 6379:6379 -d redis

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
