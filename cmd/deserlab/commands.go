// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bureau-foundation/deserlab/lib/codec"
	"github.com/bureau-foundation/deserlab/lib/deser"
	"github.com/bureau-foundation/deserlab/lib/envelope"
	"github.com/bureau-foundation/deserlab/lib/fault"
	"github.com/bureau-foundation/deserlab/lib/gadget"
	"github.com/bureau-foundation/deserlab/lib/policy"
	"github.com/bureau-foundation/deserlab/lib/sealed"
)

// rejectedExitCode is the exit status of a decode the engine refused.
const rejectedExitCode = 2

type sampleOutput struct {
	Name     string            `json:"name"`
	Tag      gadget.Tag        `json:"tag"`
	Summary  string            `json:"summary"`
	Envelope envelope.Envelope `json:"envelope"`
}

func runSamples(env *environment, args []string) error {
	flagSet := env.newFlagSet("samples")
	if done, err := env.parseFlags(flagSet, "deserlab samples", args); done || err != nil {
		return err
	}
	service, err := env.getService()
	if err != nil {
		return err
	}
	samples, err := service.Samples()
	if err != nil {
		return err
	}
	output := make([]sampleOutput, 0, len(samples))
	for _, sample := range samples {
		output = append(output, sampleOutput{
			Name:     sample.Name,
			Tag:      sample.Value.Tag(),
			Summary:  sample.Value.String(),
			Envelope: sample.Envelope,
		})
	}
	return writeJSON(env.stdout, output)
}

func runEncode(env *environment, args []string) error {
	var inputPath string
	flagSet := env.newFlagSet("encode")
	flagSet.StringVar(&inputPath, "input", "-", `JSON(C) request {"username","role","password","createdAt"}, "-" for stdin`)
	if done, err := env.parseFlags(flagSet, "deserlab encode [--input FILE]", args); done || err != nil {
		return err
	}

	data, err := env.readJSONC(inputPath)
	if err != nil {
		return err
	}
	var request deser.SerializeRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return fmt.Errorf("parsing serialize request: %w", err)
	}

	service, err := env.getService()
	if err != nil {
		return err
	}
	result, err := service.SerializeUser(request)
	if err != nil {
		return err
	}
	return writeJSON(env.stdout, result)
}

type valueOutput struct {
	Tag      gadget.Tag        `json:"tag"`
	Summary  string            `json:"summary"`
	Envelope envelope.Envelope `json:"envelope"`
}

func runEncodeValue(env *environment, args []string) error {
	var inputPath string
	flagSet := env.newFlagSet("encode-value")
	flagSet.StringVar(&inputPath, "input", "-", `JSON(C) string, integer, or nested array, "-" for stdin`)
	if done, err := env.parseFlags(flagSet, "deserlab encode-value [--input FILE]", args); done || err != nil {
		return err
	}

	data, err := env.readJSONC(inputPath)
	if err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var native any
	if err := decoder.Decode(&native); err != nil {
		return fmt.Errorf("parsing value: %w", err)
	}
	if decoder.More() {
		return errors.New("parsing value: trailing data after the first JSON value")
	}
	value, err := gadget.FromNative(native)
	if err != nil {
		return err
	}

	service, err := env.getService()
	if err != nil {
		return err
	}
	sealedEnvelope, err := service.Encode(value)
	if err != nil {
		return err
	}
	return writeJSON(env.stdout, valueOutput{Tag: value.Tag(), Summary: value.String(), Envelope: sealedEnvelope})
}

type failureOutput struct {
	OK           bool        `json:"ok"`
	Mode         string      `json:"mode"`
	Kind         fault.Kind  `json:"kind"`
	Limit        fault.Limit `json:"limit,omitempty"`
	Name         string      `json:"name,omitempty"`
	Got          string      `json:"got,omitempty"`
	Want         string      `json:"want,omitempty"`
	Size         int         `json:"size,omitempty"`
	Max          int         `json:"max,omitempty"`
	Error        string      `json:"error"`
	TriggerCount int64       `json:"triggerCount"`
}

func runDecode(env *environment, args []string) error {
	var inputPath, mode, expect string
	flagSet := env.newFlagSet("decode")
	flagSet.StringVar(&inputPath, "input", "-", `JSON(C) envelope {"payloadBase64","sigBase64"}, "-" for stdin`)
	flagSet.StringVar(&mode, "mode", deser.ModeStrict, "decode policy: sandboxed or strict")
	flagSet.StringVar(&expect, "expect", string(gadget.TagUserRecord), "discriminant the strict decode must produce")
	if done, err := env.parseFlags(flagSet, "deserlab decode [--mode sandboxed|strict] [--expect TAG] [--input FILE]", args); done || err != nil {
		return err
	}
	if mode != deser.ModeSandboxed && mode != deser.ModeStrict {
		return fmt.Errorf("--mode must be %s or %s, got %q", deser.ModeSandboxed, deser.ModeStrict, mode)
	}
	expected, err := gadget.ParseTag(expect)
	if err != nil {
		return fmt.Errorf("--expect: %w", err)
	}

	service, err := env.getService()
	if err != nil {
		return err
	}
	value, err := env.decode(service, mode, inputPath, expected)
	if err != nil {
		var failure *fault.Error
		if !errors.As(err, &failure) {
			return err
		}
		output := failureOutput{
			Mode:         mode,
			Kind:         failure.Kind,
			Limit:        failure.Limit,
			Name:         failure.Name,
			Got:          failure.Got,
			Want:         failure.Want,
			Size:         failure.Size,
			Max:          failure.Max,
			Error:        failure.Error(),
			TriggerCount: service.TriggerCount(),
		}
		if err := writeJSON(env.stdout, output); err != nil {
			return err
		}
		return &exitError{code: rejectedExitCode}
	}
	return writeJSON(env.stdout, service.Result(mode, value))
}

// decode reads the envelope and runs the selected decode. A disabled
// engine fails without reading input.
func (env *environment) decode(service *deser.Service, mode, inputPath string, expected gadget.Tag) (gadget.Value, error) {
	var input envelopeInput
	if service.Enabled() {
		var err error
		if input, err = env.readEnvelope(inputPath); err != nil {
			return nil, err
		}
	}
	if mode == deser.ModeSandboxed {
		value, _, err := service.DecodeSandboxed(input.PayloadBase64)
		return value, err
	}
	return service.DecodeStrict(input.PayloadBase64, input.SigBase64, expected)
}

type inspectOutput struct {
	Bytes       int    `json:"bytes"`
	Fingerprint string `json:"fingerprint"`
	Diagnostic  string `json:"diagnostic"`
}

// runInspect prints diagnostic notation for a payload. It never runs
// the gated decoder, so nothing is materialized and the engine does
// not need to be enabled.
func runInspect(env *environment, args []string) error {
	var inputPath string
	flagSet := env.newFlagSet("inspect")
	flagSet.StringVar(&inputPath, "input", "-", `JSON(C) envelope {"payloadBase64",...}, "-" for stdin`)
	if done, err := env.parseFlags(flagSet, "deserlab inspect [--input FILE]", args); done || err != nil {
		return err
	}

	input, err := env.readEnvelope(inputPath)
	if err != nil {
		return err
	}
	payload, err := envelope.DecodeField("payloadBase64", input.PayloadBase64)
	if err != nil {
		return err
	}
	if len(payload) > policy.MaxPayloadBytes {
		return fault.TooLarge(len(payload), policy.MaxPayloadBytes)
	}
	diagnostic, err := codec.Diagnose(payload)
	if err != nil {
		return fault.Malformed("payload is not well-formed CBOR", err)
	}
	return writeJSON(env.stdout, inspectOutput{
		Bytes:       len(payload),
		Fingerprint: envelope.Fingerprint(payload),
		Diagnostic:  diagnostic,
	})
}

func runStatus(env *environment, args []string) error {
	flagSet := env.newFlagSet("status")
	if done, err := env.parseFlags(flagSet, "deserlab status", args); done || err != nil {
		return err
	}
	service, err := env.getService()
	if err != nil {
		return err
	}
	return writeJSON(env.stdout, service.Status())
}

type keygenOutput struct {
	IdentityFile string `json:"identityFile"`
	Recipient    string `json:"recipient"`
}

func runKeygen(env *environment, args []string) error {
	var outputPath string
	flagSet := env.newFlagSet("keygen")
	flagSet.StringVar(&outputPath, "output", "", "identity file to create (must not exist)")
	if done, err := env.parseFlags(flagSet, "deserlab keygen --output FILE", args); done || err != nil {
		return err
	}
	if outputPath == "" {
		return errors.New("--output is required")
	}

	identity, err := sealed.GenerateIdentity()
	if err != nil {
		return err
	}
	defer identity.Close()

	file, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating identity file: %w", err)
	}
	header := fmt.Sprintf("# created: %s\n# public key: %s\n", time.Now().UTC().Format(time.RFC3339), identity.Recipient)
	_, writeErr := file.WriteString(header)
	if writeErr == nil {
		_, writeErr = file.Write(identity.Private.Bytes())
	}
	if writeErr == nil {
		_, writeErr = file.WriteString("\n")
	}
	if err := errors.Join(writeErr, file.Close()); err != nil {
		return fmt.Errorf("writing identity file: %w", err)
	}
	return writeJSON(env.stdout, keygenOutput{IdentityFile: outputPath, Recipient: identity.Recipient})
}

type sealOutput struct {
	HMACSecretSealed string `json:"hmacSecretSealed"`
}

func runSeal(env *environment, args []string) error {
	var inputPath string
	var recipients []string
	flagSet := env.newFlagSet("seal")
	flagSet.StringArrayVar(&recipients, "recipient", nil, "age recipient (age1...), repeatable")
	flagSet.StringVar(&inputPath, "input", "-", `file holding the secret, "-" for stdin or an interactive prompt`)
	if done, err := env.parseFlags(flagSet, "deserlab seal --recipient AGE1... [--input FILE]", args); done || err != nil {
		return err
	}
	if len(recipients) == 0 {
		return errors.New("at least one --recipient is required")
	}

	buffer, err := env.readSecret(inputPath)
	if err != nil {
		return err
	}
	defer buffer.Close()

	ciphertext, err := sealed.Seal(buffer.Bytes(), recipients...)
	if err != nil {
		return err
	}
	return writeJSON(env.stdout, sealOutput{HMACSecretSealed: ciphertext})
}
