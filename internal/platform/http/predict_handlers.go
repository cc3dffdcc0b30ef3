package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carcrafter/market-api/pkg/model"
	"github.com/carcrafter/market-api/pkg/util"
)

// predictDefaults fill in optional form fields.
var predictDefaults = map[string]string{
	"year":               "2018",
	"kilometers_driven":  "50000",
	"fuel_type":          "Petrol",
	"transmission":       "Manual",
	"owner_count":        "1",
	"car_condition":      "Good",
	"city":               "Delhi",
	"previous_accidents": "0",
	"num_doors":          "4",
	"engine_size":        "1200",
	"power":              "100",
}

var requiredPredictFields = []string{"company", "model"}

// predictAliases map the dataset's column names onto the form fields.
var predictAliases = map[string]string{
	"car_models": "model",
	"kms_driven": "kilometers_driven",
	"owner":      "owner_count",
}

func (r *Router) predict(c *gin.Context) {
	if r.predictor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Price prediction not available"})
		return
	}
	fields, err := predictFields(c)
	if err != nil {
		failure(c, http.StatusBadRequest, err)
		return
	}
	q, err := vehicleQuery(fields)
	if err != nil {
		failure(c, http.StatusBadRequest, err)
		return
	}

	result, err := r.predictor.Predict(c.Request.Context(), q)
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, util.Sanitize(result))
}

// predictFields reads the request as JSON or as a form, flattening values
// to strings.
func predictFields(c *gin.Context) (map[string]string, error) {
	out := make(map[string]string)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		for k, v := range body {
			switch x := v.(type) {
			case nil:
			case string:
				out[k] = strings.TrimSpace(x)
			case float64:
				out[k] = strconv.FormatFloat(x, 'f', -1, 64)
			case bool:
				out[k] = strconv.FormatBool(x)
			default:
				return nil, fmt.Errorf("field %s has unsupported type", k)
			}
		}
		return out, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	for k := range c.Request.PostForm {
		out[k] = strings.TrimSpace(c.Request.PostForm.Get(k))
	}
	return out, nil
}

func vehicleQuery(fields map[string]string) (model.VehicleQuery, error) {
	for alias, name := range predictAliases {
		if fields[name] == "" && fields[alias] != "" {
			fields[name] = fields[alias]
		}
	}

	var missing []string
	for _, name := range requiredPredictFields {
		if fields[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return model.VehicleQuery{}, errors.New("Missing required fields: " + strings.Join(missing, ", "))
	}

	get := func(name string) string {
		if v := fields[name]; v != "" {
			return v
		}
		return predictDefaults[name]
	}
	var errs []error
	number := func(name string) float64 {
		f, err := strconv.ParseFloat(get(name), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be numeric", name))
		}
		return f
	}

	q := model.VehicleQuery{
		Company:           fields["company"],
		Model:             fields["model"],
		Year:              int(number("year")),
		KilometersDriven:  int(number("kilometers_driven")),
		FuelType:          get("fuel_type"),
		Transmission:      get("transmission"),
		OwnerCount:        int(number("owner_count")),
		CarCondition:      get("car_condition"),
		City:              get("city"),
		PreviousAccidents: int(number("previous_accidents")),
		NumDoors:          int(number("num_doors")),
		EngineSize:        number("engine_size"),
		Power:             number("power"),
	}
	if len(errs) > 0 {
		return model.VehicleQuery{}, errors.Join(errs...)
	}
	return q, nil
}
