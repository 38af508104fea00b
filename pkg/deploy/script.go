package deploy

import (
	"io"
	"os"
	"text/template"

	"mlship.io/mlship/pkg/platform"
)

// ExecutionScriptName is the entry point file the serving host invokes.
const ExecutionScriptName = "score.py"

var executionScriptTemplate = template.Must(template.New("execution_script").Parse(`import pandas as pd

from mlship.runtime.model import Model
from mlship.runtime.pyfunc import load_pyfunc
from mlship.runtime.utils import get_jsonable_obj


def init():
    global model
    model_path = Model.get_model_path(model_name="{{.ModelName}}", version={{.ModelVersion}})
    model = load_pyfunc(model_path)


def run(raw):
    input_df = pd.read_json(raw, orient="records")
    return get_jsonable_obj(model.predict(input_df))
`))

func RenderExecutionScript(w io.Writer, model platform.Model) error {
	return executionScriptTemplate.Execute(w, map[string]any{
		"ModelName":    model.Name,
		"ModelVersion": model.Version,
	})
}

// CreateExecutionScript writes the scoring script for a registered model.
// init resolves a local path for the model and loads it; run scores a
// records-oriented JSON payload and returns one prediction per input row.
func CreateExecutionScript(outputPath string, model platform.Model) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return RenderExecutionScript(f, model)
}
