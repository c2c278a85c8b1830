// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	ConfigUnreadableId Id = iota + 1
	UnknownAddonTypeId
	AddonNotFoundId
	ArtifactNotFoundId
	TargetMismatchId
	TargetGuessFailedId
	InvalidTargetId
	LockHeldId
	PackagingFailedId
	UnsafeExtractionTargetId
	SubprocessFailedId
	SettingsLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configUnreadableIssue = &Issue{
		id: ConfigUnreadableId,
		mdMsg: `
# Cannot read the ham config!

ham looks for ` + "`.hamrc.🐹`" + ` in the current directory unless ` + "`--config`" + ` points elsewhere.
The file must exist and be valid JSON matching the ham document schema.

## Things you can try:
- Check the path you passed with ` + "`--config`" + `
- Create a minimal document:
~~~json
{
  "base": "./.addons",
  "addons": []
}
~~~
- Fix the field named in the error message; every addon needs a ` + "`type`" + ` and a ` + "`name`",
	}

	unknownAddonTypeIssue = &Issue{
		id: UnknownAddonTypeId,
		mdMsg: `
# Unknown addon type!

Every addon declares a ` + "`type`" + ` of ` + "`binary`" + `, ` + "`node`" + ` or ` + "`electron`" + `.

## Things you can try:
- Fix the ` + "`type`" + ` field of the addon named in the error
- Pass one of ` + "`binary`" + `, ` + "`node`" + ` or ` + "`electron`" + ` on the command line`,
	}

	addonNotFoundIssue = &Issue{
		id: AddonNotFoundId,
		mdMsg: `
# Addon not found!

No addon with this type and name is declared in the ham config.
Addons are identified by the pair (type, name): a ` + "`node`" + ` addon and an
` + "`electron`" + ` addon may share a name.

## Things you can try:
- Check the spelling of the addon name
- Check that the type matches the declaration
- Add the addon to the ` + "`addons`" + ` list of the ham config`,
	}

	artifactNotFoundIssue = &Issue{
		id: ArtifactNotFoundId,
		mdMsg: `
# Binary addon artifact not found!

Binary addons are never built by ham. Each target must be imported first.

## Things you can try:
- Import the prebuilt directory for this target:
~~~
$ ham import-binary <addonName> <addonPath> --target <platform>-<arch>
~~~
- Run ` + "`ham cache ls`" + ` to see which targets are present`,
	}

	targetMismatchIssue = &Issue{
		id: TargetMismatchId,
		mdMsg: `
# Cannot build for another target!

Runtime addons are built with the host's own toolchain, so they can only be
built for the platform and architecture ham is running on.

## Things you can try:
- Run the build on a machine matching the requested target
- Build there once and copy the resulting ` + "`.tgz`" + ` into the cache directory
- Omit ` + "`--target`" + ` to build for this host`,
	}

	targetGuessFailedIssue = &Issue{
		id: TargetGuessFailedId,
		mdMsg: `
# Cannot guess the addon target!

ham infers the target from the directory name, e.g. ` + "`libfoo-darwin-arm64`" + `.
Both a platform hint (darwin, osx, linux, win32, win, windows) and an
architecture hint (x64, arm64, x86) must appear as ` + "`-`" + ` or ` + "`_`" + ` separated words.

## Things you can try:
- Pass the target explicitly:
~~~
$ ham import-binary <addonName> <addonPath> --target linux-x64
~~~
- Check what ham infers with ` + "`ham guess <name>`",
	}

	invalidTargetIssue = &Issue{
		id: InvalidTargetId,
		mdMsg: `
# Invalid target!

Targets are written as ` + "`<platform>-<arch>`" + `.

## Valid values:
- platforms: linux, win32, darwin, interplatform, ios, android, iphonesimulator
- architectures: x64, arm64, x86, interarchitecture`,
	}

	lockHeldIssue = &Issue{
		id: LockHeldId,
		mdMsg: `
# The ham config is locked!

Another ham process is updating the same config. ham waits for the lock
up to ` + "`lock.wait`" + ` before giving up.

## Things you can try:
- Wait for the other process to finish and retry
- If no other ham process is running, remove the stale lock directory named in the error
- Increase ` + "`lock.wait`" + ` in your settings`,
	}

	packagingFailedIssue = &Issue{
		id: PackagingFailedId,
		mdMsg: `
# Cannot package the addon!

Packaging needs a source directory and a target file ending in ` + "`.tgz`" + `.

## Things you can try:
- Check that the path you imported is a directory, not a file
- Check that the include/exclude globs in the addon filters are valid`,
	}

	unsafeExtractionTargetIssue = &Issue{
		id: UnsafeExtractionTargetId,
		mdMsg: `
# Refusing to extract there!

Extraction wipes the destination directory first, so ham refuses to
extract into a filesystem root.

## Things you can try:
- Pass a dedicated destination directory`,
	}

	subprocessFailedIssue = &Issue{
		id: SubprocessFailedId,
		mdMsg: `
# A build step failed!

The dependency installer, the patch script or the native rebuild tool
exited with a non-zero status. Its output is shown above.

## Things you can try:
- Run again with ` + "`--verbose`" + ` to see the exact command line
- Check that ` + "`npm`" + ` and ` + "`node`" + ` are on your PATH, or set
  ` + "`installer.command`" + ` and ` + "`rebuild.node`" + ` in your settings
- For electron addons, install ` + "`@electron/rebuild`" + ` or set ` + "`rebuild.entry`" + `
- Raise ` + "`build.stage_timeout`" + ` if a step was killed after timing out`,
	}

	settingsLoadFailedIssue = &Issue{
		id: SettingsLoadFailedId,
		mdMsg: `
# Failed to load settings!

The ham settings file is CUE. Run ` + "`ham settings path`" + ` to see which file is used.

## Things you can try:
- Regenerate a default file:
~~~
$ ham settings init
~~~
- Compare your file with ` + "`ham settings dump`",
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

ham could not read or write a file it needs.

## Things you can try:
- Check permissions of the cache directory (` + "`base`" + ` in the ham config)
- Check permissions of the ham config and its directory
- Check that the temp directory is writable`,
	}

	issues = map[Id]*Issue{
		configUnreadableIssue.Id():       configUnreadableIssue,
		unknownAddonTypeIssue.Id():       unknownAddonTypeIssue,
		addonNotFoundIssue.Id():          addonNotFoundIssue,
		artifactNotFoundIssue.Id():       artifactNotFoundIssue,
		targetMismatchIssue.Id():         targetMismatchIssue,
		targetGuessFailedIssue.Id():      targetGuessFailedIssue,
		invalidTargetIssue.Id():          invalidTargetIssue,
		lockHeldIssue.Id():               lockHeldIssue,
		packagingFailedIssue.Id():        packagingFailedIssue,
		unsafeExtractionTargetIssue.Id(): unsafeExtractionTargetIssue,
		subprocessFailedIssue.Id():       subprocessFailedIssue,
		settingsLoadFailedIssue.Id():     settingsLoadFailedIssue,
		permissionDeniedIssue.Id():       permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
