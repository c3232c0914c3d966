package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Daily sales report</title>
</head>
<body>
<h1>Daily sales report</h1>
<form action="/report" method="get">
<label for="date">Date</label>
<input type="date" id="date" name="date" required>
<button type="submit">Get report</button>
</form>
</body>
</html>
`

// Index serves the date form that submits to the report endpoint
func Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}
